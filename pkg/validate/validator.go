package validate

import (
	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/records"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

// Result is the outcome of a cross-validation pass. Products carries the
// validated entries in index order when Violations is empty.
type Result struct {
	Products   []registry.Product
	Violations []Violation
}

// OK reports whether the registry passed every invariant check.
func (r *Result) OK() bool {
	return len(r.Violations) == 0
}

// Err returns nil when validation passed, otherwise an aggregate error
// joining every violation in deterministic order.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Violations))
	for i, v := range r.Violations {
		errs[i] = v.Err
	}
	return errors.Join(errs...)
}

// Products cross-checks the index entries against the record store and
// returns every invariant violation found:
//
//   - identifier format conformance
//   - identifier uniqueness within the index
//   - bijection between index identifiers and record identifiers
//   - name and status agreement between index and record (case-sensitive)
//   - lifecycle status is a recognized enumerant
//
// All checks run to completion; nothing short-circuits on the first defect.
func Products(entries []registry.Product, store map[registry.TOILID]records.Record) *Result {
	result := &Result{Products: entries}

	counts := make(map[registry.TOILID]int, len(entries))
	for _, entry := range entries {
		counts[entry.ID]++
	}

	reportedDup := make(map[registry.TOILID]bool, len(entries))
	for _, entry := range entries {
		id := string(entry.ID)

		if err := entry.ID.Validate(); err != nil {
			result.add(id, KindInvalidIDFormat, err)
		}

		if counts[entry.ID] > 1 && !reportedDup[entry.ID] {
			reportedDup[entry.ID] = true
			result.add(id, KindDuplicateID, &errors.DuplicateIDError{ID: id, Count: counts[entry.ID]})
		}

		if !entry.Status.Valid() {
			result.add(id, KindInvalidStatus, &errors.InvalidStatusError{
				ID:      id,
				Status:  string(entry.Status),
				Allowed: registry.StatusStrings(),
			})
		}

		rec, ok := store[entry.ID]
		if !ok {
			result.add(id, KindMissingRecord, &errors.MissingRecordError{ID: id})
			continue
		}

		if rec.Name != entry.Name {
			result.add(id, KindFieldMismatch, &errors.FieldMismatchError{
				ID:          id,
				Field:       "product_name",
				IndexValue:  entry.Name,
				RecordValue: rec.Name,
			})
		}
		if rec.Status != string(entry.Status) {
			result.add(id, KindFieldMismatch, &errors.FieldMismatchError{
				ID:          id,
				Field:       "status",
				IndexValue:  string(entry.Status),
				RecordValue: rec.Status,
			})
		}
	}

	for id, rec := range store {
		if counts[id] == 0 {
			result.add(string(id), KindOrphanRecord, &errors.OrphanRecordError{ID: string(id), Path: rec.Path})
		}
	}

	sortViolations(result.Violations)
	return result
}

func (r *Result) add(id string, kind Kind, err error) {
	r.Violations = append(r.Violations, Violation{ID: id, Kind: kind, Err: err})
}
