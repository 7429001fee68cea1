package registry

import (
	"path/filepath"

	"github.com/tech4life-beyond/toil-registry/pkg/constants"
)

// Snapshot is an explicit, read-only view of the registry paths taken at run
// start. Every pipeline component receives the snapshot instead of reading
// ambient global paths, so components reading the same tree stay decoupled.
type Snapshot struct {
	// IndexPath is the canonical index document.
	IndexPath string

	// RecordsDir holds one record document per TOIL ID.
	RecordsDir string

	// ExportsDir holds the generated JSON artifacts.
	ExportsDir string

	// SchemaPath is the declared export schema document.
	SchemaPath string
}

// NewSnapshot returns a snapshot of the default registry layout rooted at root.
func NewSnapshot(root string) Snapshot {
	return Snapshot{
		IndexPath:  filepath.Join(root, constants.DefaultIndexPath),
		RecordsDir: filepath.Join(root, constants.DefaultRecordsDir),
		ExportsDir: filepath.Join(root, constants.DefaultExportsDir),
		SchemaPath: filepath.Join(root, constants.DefaultSchemaPath),
	}
}

// LegacyExportPath is the committed location of the bare-array artifact.
func (s Snapshot) LegacyExportPath() string {
	return filepath.Join(s.ExportsDir, constants.LegacyExportName)
}

// VersionedExportPath is the committed location of the schema-versioned artifact.
func (s Snapshot) VersionedExportPath() string {
	return filepath.Join(s.ExportsDir, constants.VersionedExportName)
}

// CandidatesDir is where sync writes candidate artifacts. It is distinct from
// every canonical path.
func (s Snapshot) CandidatesDir() string {
	return filepath.Join(s.ExportsDir, constants.CandidatesDirName)
}

// CandidateIndexPath is where sync writes the review-only candidate table,
// next to the canonical index under a distinct name. Resolving it here keeps
// the sync generator free of any reference to the canonical index path.
func (s Snapshot) CandidateIndexPath() string {
	return filepath.Join(filepath.Dir(s.IndexPath), constants.CandidateIndexName)
}
