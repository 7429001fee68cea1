// Package constants provides shared constants used throughout the TOIL
// registry codebase: file permissions, default registry paths, and limits
// that should be consistent across the application.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0o755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0o644
)

// Default registry layout, relative to the registry root
const (
	// DefaultIndexPath is the canonical index document
	DefaultIndexPath = "index/TOIL_Product_Index.md"

	// DefaultRecordsDir holds one record document per TOIL ID
	DefaultRecordsDir = "records"

	// DefaultExportsDir holds the generated JSON artifacts
	DefaultExportsDir = "exports"

	// DefaultSchemaPath is the declared export schema document
	DefaultSchemaPath = "schema/product_index.schema.yaml"

	// LegacyExportName is the bare-array export artifact
	LegacyExportName = "product_index.json"

	// VersionedExportName is the schema-versioned export artifact
	VersionedExportName = "product_index_v1.json"

	// CandidatesDirName is the subdirectory of exports holding candidate
	// artifacts produced by sync; never the canonical paths
	CandidatesDirName = "candidates"

	// CandidateIndexName is the review-only candidate table, written next to
	// the canonical index under a distinct name
	CandidateIndexName = "TOIL_Product_Index.candidates.md"

	// CandidateLegacyExportName is the candidate bare-array artifact
	CandidateLegacyExportName = "product_index.candidates.json"

	// CandidateVersionedExportName is the candidate schema-versioned artifact
	CandidateVersionedExportName = "product_index_v1.candidates.json"
)

// Limit constants
const (
	// MaxConcurrentRecordReads bounds parallel record file reads
	MaxConcurrentRecordReads = 8
)
