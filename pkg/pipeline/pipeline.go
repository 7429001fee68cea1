// Package pipeline orchestrates the registry build: parse the canonical
// index, read the record store, cross-validate, generate exports, validate
// them against the declared schema, and either write the artifacts atomically
// or compare them with the committed ones.
//
// A run either fully succeeds or fully fails: no artifact is written or
// overwritten when any stage reports a defect.
package pipeline

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/tech4life-beyond/toil-registry/internal/fileio"
	"github.com/tech4life-beyond/toil-registry/pkg/drift"
	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/export"
	"github.com/tech4life-beyond/toil-registry/pkg/index"
	"github.com/tech4life-beyond/toil-registry/pkg/logging"
	"github.com/tech4life-beyond/toil-registry/pkg/records"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
	"github.com/tech4life-beyond/toil-registry/pkg/schema"
	"github.com/tech4life-beyond/toil-registry/pkg/validate"
)

// Pipeline runs the build, check, and validate operations against one
// read-only snapshot of the registry tree.
type Pipeline struct {
	snap   registry.Snapshot
	logger *zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pipeline over the given snapshot.
func New(snap registry.Snapshot, opts ...Option) *Pipeline {
	p := &Pipeline{
		snap:   snap,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the snapshot the pipeline operates on.
func (p *Pipeline) Snapshot() registry.Snapshot {
	return p.snap
}

// Result carries the outcome of a successful generate pass.
type Result struct {
	Products  []registry.Product
	Artifacts *export.Artifacts
	Schema    *schema.Document
}

// Load parses the canonical index and reads the record store.
//
// A missing index table is tolerated only for an entirely empty registry:
// when record files exist, the absence of the table is a hard error.
func (p *Pipeline) Load(ctx context.Context) ([]registry.Product, map[registry.TOILID]records.Record, error) {
	store, err := records.Read(logging.WithLogger(ctx, p.logger), p.snap.RecordsDir)
	if err != nil {
		return nil, nil, err
	}

	entries, err := index.ParseFile(p.snap.IndexPath)
	if err != nil {
		var missing *errors.MissingTableError
		if errors.As(err, &missing) && len(store) == 0 {
			return nil, store, nil
		}
		return nil, nil, err
	}

	p.logger.Debug().
		Int("entries", len(entries)).
		Int("records", len(store)).
		Msg("Loaded canonical sources")
	return entries, store, nil
}

// generate runs the validating half of the pipeline and renders artifacts.
func (p *Pipeline) generate(ctx context.Context) (*Result, error) {
	entries, store, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := validate.Products(entries, store)
	if err := result.Err(); err != nil {
		p.logger.Error().Int("violations", len(result.Violations)).Msg("Registry validation failed")
		return nil, err
	}

	doc, err := schema.LoadOrEmbedded(p.snap.SchemaPath)
	if err != nil {
		return nil, err
	}

	artifacts, err := export.Generate(result.Products, doc.SchemaVersion)
	if err != nil {
		return nil, err
	}

	if err := errors.Join(
		doc.ValidateVersioned(artifacts.Versioned),
		doc.ValidateLegacy(artifacts.Legacy),
	); err != nil {
		return nil, err
	}

	return &Result{Products: result.Products, Artifacts: artifacts, Schema: doc}, nil
}

// Build validates the registry, generates both export artifacts, and writes
// them atomically into the exports directory.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	result, err := p.generate(ctx)
	if err != nil {
		return nil, err
	}

	if err := fileio.WriteAtomic(p.snap.LegacyExportPath(), result.Artifacts.Legacy); err != nil {
		return nil, err
	}
	if err := fileio.WriteAtomic(p.snap.VersionedExportPath(), result.Artifacts.Versioned); err != nil {
		return nil, err
	}

	p.logger.Info().
		Int("products", len(result.Products)).
		Str("exports", p.snap.ExportsDir).
		Msg("Export artifacts written")
	return result, nil
}

// Check regenerates the artifacts in memory and compares them with the
// committed ones. It performs no writes.
func (p *Pipeline) Check(ctx context.Context) (*Result, error) {
	result, err := p.generate(ctx)
	if err != nil {
		return nil, err
	}

	if err := errors.Join(
		drift.Check(p.snap.LegacyExportPath(), result.Artifacts.Legacy),
		drift.Check(p.snap.VersionedExportPath(), result.Artifacts.Versioned),
	); err != nil {
		return nil, err
	}

	p.logger.Info().Int("products", len(result.Products)).Msg("Committed artifacts match canonical sources")
	return result, nil
}

// Validate runs the cross-validator, then validates the committed artifacts
// against the declared schema and their mutual agreement. A missing or
// unreadable committed artifact is itself a failure: validate doubles as the
// CI regression check, so absent exports must not pass silently. It performs
// no generation side effects and no writes.
func (p *Pipeline) Validate(ctx context.Context) (*validate.Result, error) {
	entries, store, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := validate.Products(entries, store)
	if err := result.Err(); err != nil {
		return result, err
	}

	doc, err := schema.LoadOrEmbedded(p.snap.SchemaPath)
	if err != nil {
		return result, err
	}

	var errs []error
	legacyPath := p.snap.LegacyExportPath()
	versionedPath := p.snap.VersionedExportPath()

	versionedData, versionedErr := readCommitted(versionedPath)
	if versionedErr != nil {
		errs = append(errs, versionedErr)
	} else {
		errs = append(errs, doc.ValidateVersioned(versionedData))
	}

	legacyData, legacyErr := readCommitted(legacyPath)
	if legacyErr != nil {
		errs = append(errs, legacyErr)
	} else {
		errs = append(errs, doc.ValidateLegacy(legacyData))
	}

	if versionedErr == nil && legacyErr == nil {
		errs = append(errs, drift.CheckAgreement(legacyPath, versionedPath))
	}

	return result, errors.Join(errs...)
}

// readCommitted loads a committed export artifact. Absence maps to a drift
// error naming the artifact; any other read failure is surfaced as IO.
func readCommitted(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.DriftDetectedError{Artifact: path, Diff: "committed artifact does not exist"}
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}
