package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/export"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

func testDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := Embedded()
	require.NoError(t, err)
	return doc
}

func generated(t *testing.T) *export.Artifacts {
	t.Helper()
	artifacts, err := export.Generate([]registry.Product{
		{
			ID:           "T4L-TOIL-001-CDD",
			Name:         "Clean Drain Device",
			Category:     "HVAC Hardware",
			LeadCreator:  "Ariel Martin",
			Status:       registry.StatusActive,
			LicenseState: "Open for Licensing",
		},
	}, "1.0.0")
	require.NoError(t, err)
	return artifacts
}

func TestEmbeddedSchemaDeclaration(t *testing.T) {
	doc := testDoc(t)
	assert.Equal(t, "1.0.0", doc.SchemaVersion)
	assert.Len(t, doc.RequiredProductFields, 8)
	assert.Equal(t, registry.StatusStrings(), doc.Statuses)
}

func TestGeneratedArtifactsConform(t *testing.T) {
	doc := testDoc(t)
	artifacts := generated(t)

	assert.NoError(t, doc.ValidateVersioned(artifacts.Versioned))
	assert.NoError(t, doc.ValidateLegacy(artifacts.Legacy))
}

func TestValidateVersionedViolations(t *testing.T) {
	doc := testDoc(t)

	tests := []struct {
		name       string
		artifact   string
		path       string
		constraint string
	}{
		{
			"wrong schema version",
			`{"schema_version": "2.0.0", "products": []}`,
			"schema_version",
			"const",
		},
		{
			"missing schema version",
			`{"products": []}`,
			"schema_version",
			"required",
		},
		{
			"missing products",
			`{"schema_version": "1.0.0"}`,
			"products",
			"required",
		},
		{
			"bad identifier pattern",
			`{"schema_version": "1.0.0", "products": [{"toil_id": "T4L-TOIL-1-bad", "product_name": "X", "category": "C", "lead_creator": "A", "status": "Active", "license_state": "Open for Licensing", "aliases": [], "legacy_ids": []}]}`,
			"products[0].toil_id",
			"pattern",
		},
		{
			"status outside enum",
			`{"schema_version": "1.0.0", "products": [{"toil_id": "T4L-TOIL-001-CDD", "product_name": "X", "category": "C", "lead_creator": "A", "status": "Retired", "license_state": "Open for Licensing", "aliases": [], "legacy_ids": []}]}`,
			"products[0].status",
			"enum",
		},
		{
			"license state outside enum",
			`{"schema_version": "1.0.0", "products": [{"toil_id": "T4L-TOIL-001-CDD", "product_name": "X", "category": "C", "lead_creator": "A", "status": "Active", "license_state": "Whatever", "aliases": [], "legacy_ids": []}]}`,
			"products[0].license_state",
			"enum",
		},
		{
			"missing aliases field",
			`{"schema_version": "1.0.0", "products": [{"toil_id": "T4L-TOIL-001-CDD", "product_name": "X", "category": "C", "lead_creator": "A", "status": "Active", "license_state": "Open for Licensing", "legacy_ids": []}]}`,
			"products[0].aliases",
			"required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := doc.ValidateVersioned([]byte(tt.artifact))
			require.Error(t, err)
			assert.True(t, errors.IsSchemaViolation(err))

			var violation *errors.SchemaViolationError
			require.ErrorAs(t, err, &violation)
			assert.Equal(t, tt.path, violation.Path)
			assert.Equal(t, tt.constraint, violation.Constraint)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	doc := testDoc(t)
	err := doc.ValidateVersioned([]byte(`{"schema_version": "9.9.9", "products": [
		{"toil_id": "bad-one", "product_name": "X", "category": "C", "lead_creator": "A", "status": "Nope", "license_state": "Open for Licensing", "aliases": [], "legacy_ids": []}
	]}`))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "schema_version")
	assert.Contains(t, msg, "toil_id")
	assert.Contains(t, msg, "status")
}

func TestLoadOrEmbeddedPrefersFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`schema_version: "3.1.4"
toil_id_pattern: "^T4L-TOIL-[0-9]{3}-[A-Z0-9]+$"
required_product_fields: [toil_id]
statuses: [Active]
`), 0o644))

	doc, err := LoadOrEmbedded(path)
	require.NoError(t, err)
	assert.Equal(t, "3.1.4", doc.SchemaVersion)

	fallback, err := LoadOrEmbedded(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", fallback.SchemaVersion)
}

func TestParseRejectsIncompleteDocuments(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"no version", "toil_id_pattern: \"^X$\"\n"},
		{"no pattern", "schema_version: \"1.0.0\"\n"},
		{"bad pattern", "schema_version: \"1.0.0\"\ntoil_id_pattern: \"([\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "schema.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
