// Package validate enforces the registry invariants across the canonical
// index and the record store before any export is produced.
//
// The validator collects every violation it finds instead of failing on the
// first, so a single run surfaces the complete defect list.
package validate

import (
	"sort"
)

// Kind identifies a class of registry invariant violation. The declared
// values also define the deterministic report order within one identifier.
type Kind string

// Violation kinds, in report order.
const (
	KindInvalidIDFormat Kind = "invalid_id_format"
	KindDuplicateID     Kind = "duplicate_id"
	KindMissingRecord   Kind = "missing_record"
	KindOrphanRecord    Kind = "orphan_record"
	KindFieldMismatch   Kind = "field_mismatch"
	KindInvalidStatus   Kind = "invalid_status"
)

// kindRank fixes the secondary sort order of the violation report.
var kindRank = map[Kind]int{
	KindInvalidIDFormat: 0,
	KindDuplicateID:     1,
	KindMissingRecord:   2,
	KindOrphanRecord:    3,
	KindFieldMismatch:   4,
	KindInvalidStatus:   5,
}

// Violation is one registry invariant failure, attributed to an identifier.
type Violation struct {
	ID   string // TOIL ID the violation is attributed to
	Kind Kind
	Err  error // the typed error carrying the detail
}

// sortViolations orders violations by identifier, then kind, then message,
// making the aggregate report deterministic across runs.
func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if kindRank[a.Kind] != kindRank[b.Kind] {
			return kindRank[a.Kind] < kindRank[b.Kind]
		}
		return a.Err.Error() < b.Err.Error()
	})
}
