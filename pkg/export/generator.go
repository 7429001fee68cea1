// Package export renders validated product entries into the two JSON export
// artifacts: the legacy bare-array shape and the schema-versioned object.
//
// Generation is a pure function of its input: identical entries always yield
// byte-identical artifacts. Entries are sorted ascending by TOIL ID, fields
// serialize in the fixed order declared on registry.Product, optional
// sequences render as empty arrays, and no wall-clock timestamp is embedded.
package export

import (
	"bytes"
	"encoding/json"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

// DefaultSchemaVersion is used when no schema document declares a version.
const DefaultSchemaVersion = "1.0.0"

// Versioned is the schema-versioned export artifact shape.
type Versioned struct {
	SchemaVersion string             `json:"schema_version"`
	Products      []registry.Product `json:"products"`
}

// Artifacts carries the rendered bytes of both export shapes.
type Artifacts struct {
	Legacy    []byte
	Versioned []byte
}

// Generate renders both artifacts from the given entries. The input slice is
// not mutated.
func Generate(products []registry.Product, schemaVersion string) (*Artifacts, error) {
	if schemaVersion == "" {
		schemaVersion = DefaultSchemaVersion
	}

	sorted := prepare(products)

	legacy, err := marshal(sorted)
	if err != nil {
		return nil, err
	}
	versioned, err := marshal(Versioned{SchemaVersion: schemaVersion, Products: sorted})
	if err != nil {
		return nil, err
	}

	return &Artifacts{Legacy: legacy, Versioned: versioned}, nil
}

// prepare copies, normalizes, and sorts entries into canonical export order.
func prepare(products []registry.Product) []registry.Product {
	sorted := make([]registry.Product, len(products))
	copy(sorted, products)
	for i := range sorted {
		sorted[i].Normalize()
	}
	registry.SortProducts(sorted)
	return sorted
}

// marshal renders two-space indented JSON with a trailing newline and without
// HTML escaping, the committed artifact format.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return buf.Bytes(), nil
}
