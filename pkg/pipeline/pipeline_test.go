package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

const testIndex = `# TOIL Product Index

<!-- AUTO-GENERATED: PRODUCT INDEX TABLE (DO NOT EDIT BELOW) -->

| TOIL ID | Product Name | Category | Lead Creator | Status | License State | Aliases (Optional) | Legacy IDs (Optional) |
|-------|-------------|----------|--------------|--------|---------------|-------------------|-----------------------|
| T4L-TOIL-001-CDD | Clean Drain Device | HVAC Hardware | Ariel Martin | Active | Open for Licensing | DrainClean T Adapter | T4L-2025-001 |
| T4L-TOIL-002-KIVAI | Kivai Voice Assistant | Software | Ariel Martin | Prototype | Open for Licensing |  |  |
`

func record(id, name, status string) string {
	return "# " + name + "\n\n" +
		"- TOIL ID: " + id + "\n" +
		"- Product Name: " + name + "\n" +
		"- Status: " + status + "\n" +
		"- License State: Open for Licensing\n"
}

// newRegistry lays out a consistent registry tree and returns its snapshot.
func newRegistry(t *testing.T) registry.Snapshot {
	t.Helper()
	root := t.TempDir()
	snap := registry.NewSnapshot(root)

	require.NoError(t, os.MkdirAll(filepath.Dir(snap.IndexPath), 0o755))
	require.NoError(t, os.MkdirAll(snap.RecordsDir, 0o755))
	require.NoError(t, os.WriteFile(snap.IndexPath, []byte(testIndex), 0o644))

	writeRecord(t, snap, "T4L-TOIL-001-CDD", record("T4L-TOIL-001-CDD", "Clean Drain Device", "Active"))
	writeRecord(t, snap, "T4L-TOIL-002-KIVAI", record("T4L-TOIL-002-KIVAI", "Kivai Voice Assistant", "Prototype"))
	return snap
}

func writeRecord(t *testing.T, snap registry.Snapshot, id, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(snap.RecordsDir, id+".md"), []byte(content), 0o644))
}

func TestBuildWritesBothArtifacts(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	result, err := p.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Products, 2)

	legacyData, err := os.ReadFile(snap.LegacyExportPath())
	require.NoError(t, err)
	var legacy []registry.Product
	require.NoError(t, json.Unmarshal(legacyData, &legacy))
	require.Len(t, legacy, 2)
	assert.Equal(t, registry.TOILID("T4L-TOIL-001-CDD"), legacy[0].ID)
	assert.Equal(t, registry.TOILID("T4L-TOIL-002-KIVAI"), legacy[1].ID)

	versionedData, err := os.ReadFile(snap.VersionedExportPath())
	require.NoError(t, err)
	var versioned map[string]any
	require.NoError(t, json.Unmarshal(versionedData, &versioned))
	assert.Equal(t, "1.0.0", versioned["schema_version"])
}

func TestBuildIsDeterministic(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	_, err := p.Build(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(snap.LegacyExportPath())
	require.NoError(t, err)

	_, err = p.Build(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(snap.LegacyExportPath())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCheckPassesAfterBuild(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	_, err := p.Build(context.Background())
	require.NoError(t, err)

	_, err = p.Check(context.Background())
	assert.NoError(t, err)
}

func TestCheckDetectsEditedArtifact(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	_, err := p.Build(context.Background())
	require.NoError(t, err)

	// Hand-edit the committed export without touching the sources.
	data, err := os.ReadFile(snap.LegacyExportPath())
	require.NoError(t, err)
	edited := strings.Replace(string(data), "Clean Drain Device", "Dirty Drain Device", 1)
	require.NoError(t, os.WriteFile(snap.LegacyExportPath(), []byte(edited), 0o644))

	_, err = p.Check(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDrift(err))

	var drift *errors.DriftDetectedError
	require.ErrorAs(t, err, &drift)
	assert.Contains(t, drift.Diff, "Dirty Drain Device")
}

func TestCheckNeverWrites(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	_, err := p.Check(context.Background())
	require.Error(t, err, "check against missing artifacts must report drift")

	assert.NoFileExists(t, snap.LegacyExportPath())
	assert.NoFileExists(t, snap.VersionedExportPath())
}

func TestBuildFailsWithoutWritingOnValidationError(t *testing.T) {
	snap := newRegistry(t)
	// Remove one record so the bijection breaks.
	require.NoError(t, os.Remove(filepath.Join(snap.RecordsDir, "T4L-TOIL-002-KIVAI.md")))

	p := New(snap)
	_, err := p.Build(context.Background())
	require.Error(t, err)

	var missing *errors.MissingRecordError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "T4L-TOIL-002-KIVAI", missing.ID)

	assert.NoFileExists(t, snap.LegacyExportPath())
	assert.NoFileExists(t, snap.VersionedExportPath())
}

func TestValidateReportsMissingRecord(t *testing.T) {
	snap := newRegistry(t)

	// Add an index row with no record file.
	data, err := os.ReadFile(snap.IndexPath)
	require.NoError(t, err)
	row := "| T4L-TOIL-003-XYZ | Mystery Box | Gadgets | Ariel Martin | Concept | Open for Licensing |  |  |\n"
	require.NoError(t, os.WriteFile(snap.IndexPath, append(data, []byte(row)...), 0o644))

	p := New(snap)
	result, err := p.Validate(context.Background())
	require.Error(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "T4L-TOIL-003-XYZ", result.Violations[0].ID)
}

func TestValidateFailsWhenCommittedArtifactsMissing(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	// Sources are valid but nothing has been built yet.
	result, err := p.Validate(context.Background())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Violations)

	assert.True(t, errors.IsDrift(err))
	assert.Contains(t, err.Error(), snap.LegacyExportPath())
	assert.Contains(t, err.Error(), snap.VersionedExportPath())
}

func TestValidateFailsWhenOneCommittedArtifactMissing(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	_, err := p.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(snap.LegacyExportPath()))

	_, err = p.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDrift(err))
	assert.Contains(t, err.Error(), snap.LegacyExportPath())
	assert.NotContains(t, err.Error(), snap.VersionedExportPath())
}

func TestValidateChecksCommittedArtifactAgreement(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	_, err := p.Build(context.Background())
	require.NoError(t, err)

	// Desynchronize the two committed shapes.
	require.NoError(t, os.WriteFile(snap.LegacyExportPath(), []byte("[]\n"), 0o644))

	_, err = p.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDrift(err))
}

func TestEmptyRegistryBuilds(t *testing.T) {
	root := t.TempDir()
	snap := registry.NewSnapshot(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(snap.IndexPath), 0o755))
	require.NoError(t, os.WriteFile(snap.IndexPath, []byte("# TOIL Product Index\n\nNo products registered yet.\n"), 0o644))

	p := New(snap)
	result, err := p.Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Products)

	data, err := os.ReadFile(snap.LegacyExportPath())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestMissingTableWithRecordsIsHardError(t *testing.T) {
	snap := newRegistry(t)
	require.NoError(t, os.WriteFile(snap.IndexPath, []byte("# TOIL Product Index\n\nTable removed.\n"), 0o644))

	p := New(snap)
	_, err := p.Build(context.Background())
	require.Error(t, err)

	var missing *errors.MissingTableError
	assert.ErrorAs(t, err, &missing)
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	snap := newRegistry(t)
	p := New(snap)

	_, err := p.Build(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(snap.ExportsDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}
