// Package records reads the per-product record documents, one markdown file
// per TOIL ID, and extracts the structured fields needed for cross-validation
// against the canonical index.
package records

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tech4life-beyond/toil-registry/pkg/constants"
	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/logging"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

// Record holds the fields extracted from one record document.
type Record struct {
	ID           registry.TOILID
	Name         string
	Status       string
	LicenseState string
	Path         string
}

// Field labels recognized in the key-value preamble of record documents and
// product pack READMEs. Keys are matched case-insensitively.
const (
	FieldTOILID       = "toil id"
	FieldProductName  = "product name"
	FieldCategory     = "category"
	FieldLeadCreator  = "lead creator"
	FieldStatus       = "status"
	FieldLicenseState = "license state"
	FieldAliases      = "aliases"
	FieldLegacyIDs    = "legacy ids"
)

// fieldLine matches labeled key-value lines, with or without a list bullet:
// "- Status: Active", "* License State: Open for Licensing", "Status: Active".
var fieldLine = regexp.MustCompile(`^\s*[-*]?\s*([^:]+?)\s*:\s*(.+)$`)

// recordExtensions are the file extensions treated as record documents.
// Two files differing only in extension resolve to the same TOIL ID.
var recordExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// ExtractFields scans document text for labeled key-value lines and returns a
// map from lowercased field label to its value. The first occurrence of a
// label wins.
func ExtractFields(text string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		m := fieldLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(m[1]))
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = strings.TrimSpace(m[2])
	}
	return fields
}

// Read loads every record document in dir and returns a mapping from TOIL ID
// to parsed record. File reads are parallelized; results are deterministic.
//
// A record missing a required field fails with RecordFieldMissingError, and
// two files resolving to the same identifier fail with
// DuplicateRecordFileError. A missing directory yields an empty map: absence
// of records is reported against the index by the cross-validator, not here.
func Read(ctx context.Context, dir string) (map[registry.TOILID]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[registry.TOILID]Record{}, nil
		}
		return nil, errors.WrapIO("read", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if recordExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	var (
		mu      sync.Mutex
		byID    = make(map[registry.TOILID]Record, len(paths))
		seen    = make(map[registry.TOILID][]string, len(paths))
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(constants.MaxConcurrentRecordReads)

	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := readFile(path)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			seen[rec.ID] = append(seen[rec.ID], path)
			byID[rec.ID] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var dupErrs []error
	for id, files := range seen {
		if len(files) > 1 {
			sort.Strings(files)
			dupErrs = append(dupErrs, &errors.DuplicateRecordFileError{ID: string(id), Paths: files})
		}
	}
	if len(dupErrs) > 0 {
		sort.Slice(dupErrs, func(i, j int) bool { return dupErrs[i].Error() < dupErrs[j].Error() })
		return nil, errors.Join(dupErrs...)
	}

	logging.Ctx(ctx).Debug().Int("records", len(byID)).Str("dir", dir).Msg("Loaded record store")
	return byID, nil
}

// readFile parses a single record document. The TOIL ID is resolved from the
// filename; the preamble supplies the remaining required fields.
func readFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, errors.WrapIO("read", path, err)
	}

	fields := ExtractFields(string(data))

	name := filepath.Base(path)
	id := strings.TrimSuffix(name, filepath.Ext(name))

	rec := Record{
		ID:   registry.TOILID(id),
		Path: path,
	}

	required := []struct {
		label string
		dst   *string
	}{
		{FieldProductName, &rec.Name},
		{FieldStatus, &rec.Status},
		{FieldLicenseState, &rec.LicenseState},
	}
	for _, req := range required {
		value, ok := fields[req.label]
		if !ok {
			return Record{}, &errors.RecordFieldMissingError{Path: path, Field: req.label}
		}
		*req.dst = value
	}

	// The identifier must also be locatable inside the document.
	if _, ok := fields[FieldTOILID]; !ok {
		return Record{}, &errors.RecordFieldMissingError{Path: path, Field: FieldTOILID}
	}

	return rec, nil
}
