// Package registry defines the core data model of the TOIL product registry:
// product entries, TOIL identifiers, lifecycle statuses, and the read-only
// snapshot of registry paths that each pipeline run operates on.
package registry

import (
	"regexp"
	"sort"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
)

// toilIDPattern is the required identifier format:
// T4L-TOIL-<3-digit zero-padded sequence>-<uppercase alphanumeric slug>.
var toilIDPattern = regexp.MustCompile(`^T4L-TOIL-\d{3}-[A-Z0-9]+$`)

// TOILID is the unique registry identifier of a product entry.
type TOILID string

// String returns the string representation of a TOILID.
func (id TOILID) String() string {
	return string(id)
}

// Validate checks the identifier against the required pattern.
func (id TOILID) Validate() error {
	if !toilIDPattern.MatchString(string(id)) {
		return &errors.InvalidIDFormatError{ID: string(id)}
	}
	return nil
}

// Product represents one entry of the canonical index.
//
// JSON field order is the canonical serialization order of the export
// artifacts; do not reorder fields.
type Product struct {
	ID           TOILID   `json:"toil_id" yaml:"toil_id"`
	Name         string   `json:"product_name" yaml:"product_name"`
	Category     string   `json:"category" yaml:"category"`
	LeadCreator  string   `json:"lead_creator" yaml:"lead_creator"`
	Status       Status   `json:"status" yaml:"status"`
	LicenseState string   `json:"license_state" yaml:"license_state"`
	Aliases      []string `json:"aliases" yaml:"aliases"`
	LegacyIDs    []string `json:"legacy_ids" yaml:"legacy_ids"`
}

// Normalize replaces nil optional sequences with empty ones so the exported
// shape is stable across entries.
func (p *Product) Normalize() {
	if p.Aliases == nil {
		p.Aliases = []string{}
	}
	if p.LegacyIDs == nil {
		p.LegacyIDs = []string{}
	}
}

// SortProducts orders products ascending by TOIL ID, the canonical export order.
func SortProducts(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
}
