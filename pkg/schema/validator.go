package schema

import (
	"encoding/json"
	"fmt"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
)

// ValidateVersioned checks a versioned export artifact against the document:
// top-level shape, schema_version agreement, per-entry required fields,
// identifier pattern, and the status and license-state enums.
//
// All violations found are reported together via errors.Join.
func (d *Document) ValidateVersioned(data []byte) error {
	var artifact map[string]json.RawMessage
	if err := json.Unmarshal(data, &artifact); err != nil {
		return errors.WrapParse("json", "versioned export", err)
	}

	var errs []error

	rawVersion, ok := artifact["schema_version"]
	if !ok {
		errs = append(errs, &errors.SchemaViolationError{Path: "schema_version", Constraint: "required"})
	} else {
		var version string
		if err := json.Unmarshal(rawVersion, &version); err != nil || version != d.SchemaVersion {
			errs = append(errs, &errors.SchemaViolationError{
				Path:       "schema_version",
				Constraint: "const",
				Detail:     fmt.Sprintf("want %q, got %s", d.SchemaVersion, rawVersion),
			})
		}
	}

	rawProducts, ok := artifact["products"]
	if !ok {
		errs = append(errs, &errors.SchemaViolationError{Path: "products", Constraint: "required"})
		return errors.Join(errs...)
	}

	var products []map[string]json.RawMessage
	if err := json.Unmarshal(rawProducts, &products); err != nil {
		errs = append(errs, &errors.SchemaViolationError{
			Path:       "products",
			Constraint: "type",
			Detail:     "must be an array of objects",
		})
		return errors.Join(errs...)
	}

	errs = append(errs, d.validateEntries("products", products)...)
	return errors.Join(errs...)
}

// ValidateLegacy checks the bare-array export artifact: the entry constraints
// are identical, there is just no wrapper object.
func (d *Document) ValidateLegacy(data []byte) error {
	var products []map[string]json.RawMessage
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.WrapParse("json", "legacy export", err)
	}
	return errors.Join(d.validateEntries("", products)...)
}

func (d *Document) validateEntries(prefix string, products []map[string]json.RawMessage) []error {
	var errs []error
	for i, product := range products {
		at := func(field string) string {
			if prefix == "" {
				return fmt.Sprintf("[%d].%s", i, field)
			}
			return fmt.Sprintf("%s[%d].%s", prefix, i, field)
		}

		for _, field := range d.RequiredProductFields {
			if _, ok := product[field]; !ok {
				errs = append(errs, &errors.SchemaViolationError{Path: at(field), Constraint: "required"})
			}
		}

		if id, ok := stringField(product, "toil_id"); ok && !d.idPattern.MatchString(id) {
			errs = append(errs, &errors.SchemaViolationError{
				Path:       at("toil_id"),
				Constraint: "pattern",
				Detail:     fmt.Sprintf("%q does not match %s", id, d.TOILIDPattern),
			})
		}

		if status, ok := stringField(product, "status"); ok && !contains(d.Statuses, status) {
			errs = append(errs, &errors.SchemaViolationError{
				Path:       at("status"),
				Constraint: "enum",
				Detail:     fmt.Sprintf("%q is not a declared status", status),
			})
		}

		if state, ok := stringField(product, "license_state"); ok && len(d.LicenseStates) > 0 && !contains(d.LicenseStates, state) {
			errs = append(errs, &errors.SchemaViolationError{
				Path:       at("license_state"),
				Constraint: "enum",
				Detail:     fmt.Sprintf("%q is not a declared license state", state),
			})
		}
	}
	return errs
}

func stringField(product map[string]json.RawMessage, field string) (string, bool) {
	raw, ok := product[field]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
