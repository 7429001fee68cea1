package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

const validIndex = `# TOIL Product Index

Canonical registry of Tech4Life products.

<!-- AUTO-GENERATED: PRODUCT INDEX TABLE (DO NOT EDIT BELOW) -->

| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|-------|-------------|----------|--------------|--------|---------------|-------------------|-----------------------|
| T4L-TOIL-001-CDD | Clean Drain Device | HVAC Hardware | Ariel Martin | Active | Open for Licensing | DrainClean T Adapter | T4L-2025-001 |
| T4L-TOIL-002-KIVAI | Kivai Voice Assistant | Software | Ariel Martin | Prototype | Open for Licensing |  |  |
`

func TestParseValidIndex(t *testing.T) {
	products, err := Parse("index.md", validIndex)
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, registry.TOILID("T4L-TOIL-001-CDD"), first.ID)
	assert.Equal(t, "Clean Drain Device", first.Name)
	assert.Equal(t, "HVAC Hardware", first.Category)
	assert.Equal(t, "Ariel Martin", first.LeadCreator)
	assert.Equal(t, registry.StatusActive, first.Status)
	assert.Equal(t, "Open for Licensing", first.LicenseState)
	assert.Equal(t, []string{"DrainClean T Adapter"}, first.Aliases)
	assert.Equal(t, []string{"T4L-2025-001"}, first.LegacyIDs)

	second := products[1]
	assert.Equal(t, registry.TOILID("T4L-TOIL-002-KIVAI"), second.ID)
	assert.Empty(t, second.Aliases)
	assert.Empty(t, second.LegacyIDs)
}

func TestParsePreservesDocumentOrder(t *testing.T) {
	doc := `| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|---|---|---|---|---|---|---|---|
| T4L-TOIL-009-LAST | Last | C | A | Active | Open for Licensing |  |  |
| T4L-TOIL-001-CDD | First | C | A | Active | Open for Licensing |  |  |
`
	products, err := Parse("index.md", doc)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, registry.TOILID("T4L-TOIL-009-LAST"), products[0].ID)
	assert.Equal(t, registry.TOILID("T4L-TOIL-001-CDD"), products[1].ID)
}

func TestParseColumnOrderInsensitive(t *testing.T) {
	doc := `| Product Name | TOIL ID | Status | Category | License State | Lead Creator | Legacy IDs (Optional) | Aliases (Optional) |
|---|---|---|---|---|---|---|---|
| Clean Drain Device | T4L-TOIL-001-CDD | Active | HVAC Hardware | Open for Licensing | Ariel Martin |  | DrainClean T Adapter |
`
	products, err := Parse("index.md", doc)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, registry.TOILID("T4L-TOIL-001-CDD"), products[0].ID)
	assert.Equal(t, "Clean Drain Device", products[0].Name)
	assert.Equal(t, []string{"DrainClean T Adapter"}, products[0].Aliases)
}

func TestParseDuplicateTable(t *testing.T) {
	doc := validIndex + `

Some prose between tables.

| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|---|---|---|---|---|---|---|---|
| T4L-TOIL-003-XYZ | Another | C | A | Active | Open for Licensing |  |  |
`
	_, err := Parse("index.md", doc)
	require.Error(t, err)

	var dup *errors.DuplicateTableError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 2, dup.Count)
	assert.True(t, errors.IsDuplicate(err))
}

func TestParseDuplicateTableRegardlessOfContent(t *testing.T) {
	// Second table is empty of rows; still a hard error.
	doc := validIndex + `
| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|---|---|---|---|---|---|---|---|
`
	_, err := Parse("index.md", doc)
	var dup *errors.DuplicateTableError
	require.ErrorAs(t, err, &dup)
}

func TestParseMissingTable(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no tables at all", "# TOIL Product Index\n\nNothing here.\n"},
		{"table with wrong columns", "| ID | Name |\n|---|---|\n| a | b |\n"},
		{"partial column set", "| TOIL ID | Product Name | Status |\n|---|---|---|\n| T4L-TOIL-001-CDD | X | Active |\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("index.md", tt.doc)
			var missing *errors.MissingTableError
			require.ErrorAs(t, err, &missing)
		})
	}
}

func TestParseMalformedRow(t *testing.T) {
	doc := `| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|---|---|---|---|---|---|---|---|
| T4L-TOIL-001-CDD | Clean Drain Device | HVAC Hardware | Ariel Martin | Active | Open for Licensing |  |
`
	_, err := Parse("index.md", doc)
	require.Error(t, err)

	var malformed *errors.MalformedRowError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.Line)
	assert.Equal(t, 7, malformed.Got)
	assert.Equal(t, 8, malformed.Want)
}

func TestParseDuplicateTableWinsOverMalformedRow(t *testing.T) {
	// A bad row in the first table must not cut the scan short; the second
	// qualifying table is still counted and decides the error.
	doc := `| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|---|---|---|---|---|---|---|---|
| T4L-TOIL-001-CDD | Clean Drain Device |
| T4L-TOIL-002-KIVAI | Kivai Voice Assistant | Software | Ariel Martin | Prototype | Open for Licensing |  |  |

| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|---|---|---|---|---|---|---|---|
| T4L-TOIL-003-XYZ | Another | C | A | Active | Open for Licensing |  |  |
`
	_, err := Parse("index.md", doc)
	require.Error(t, err)

	var dup *errors.DuplicateTableError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 2, dup.Count)

	var malformed *errors.MalformedRowError
	assert.False(t, errors.As(err, &malformed))
}

func TestParseDoesNotValidateIdentifiers(t *testing.T) {
	// Format violations are the cross-validator's job; the parser passes
	// malformed identifiers through.
	doc := `| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|---|---|---|---|---|---|---|---|
| T4L-TOIL-1-bad | Bad | C | A | Active | Open for Licensing |  |  |
`
	products, err := Parse("index.md", doc)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, registry.TOILID("T4L-TOIL-1-bad"), products[0].ID)
}
