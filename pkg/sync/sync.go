// Package sync ingests an external product pack repository, a lower-trust
// source of proposed products, and renders review-only candidate artifacts:
// candidate JSON exports and a clearly labeled candidate table.
//
// The generator holds no reference to the canonical index path. Its outputs
// are confined to distinctly named candidate files, so it cannot alter the
// canonical index even on a buggy run.
package sync

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	md "github.com/nao1215/markdown"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tech4life-beyond/toil-registry/internal/fileio"
	"github.com/tech4life-beyond/toil-registry/pkg/constants"
	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/export"
	"github.com/tech4life-beyond/toil-registry/pkg/logging"
	"github.com/tech4life-beyond/toil-registry/pkg/records"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
	"github.com/tech4life-beyond/toil-registry/pkg/schema"
)

// CandidateMarker labels the generated candidate table so a reviewer cannot
// mistake it for the canonical one.
const CandidateMarker = "<!-- AUTO-GENERATED: CANDIDATE PRODUCT INDEX TABLE (REVIEW ONLY) -->"

// toilIDSearch finds TOIL identifiers anywhere in free-form README text.
var toilIDSearch = regexp.MustCompile(`T4L-TOIL-\d{3}-[A-Z0-9]+`)

// Defaults applied to pack metadata fields the source does not declare.
const (
	DefaultLeadCreator  = "Ariel Martin"
	DefaultLicenseState = "Open for Licensing"
)

// DefaultStatus is the lifecycle status assumed for packs that declare none.
const DefaultStatus = registry.StatusActive

// sidecar is the optional structured metadata file of a product pack. Fields
// set here override values extracted from the README.
type sidecar struct {
	TOILID       string   `yaml:"toil_id"`
	ProductName  string   `yaml:"product_name"`
	Category     string   `yaml:"category"`
	LeadCreator  string   `yaml:"lead_creator"`
	Status       string   `yaml:"status"`
	LicenseState string   `yaml:"license_state"`
	Aliases      []string `yaml:"aliases"`
	LegacyIDs    []string `yaml:"legacy_ids"`
}

// sidecarNames are probed in order; the first existing file wins.
var sidecarNames = []string{"metadata.yaml", "metadata.yml", "metadata.json"}

// Result holds the outputs of one sync run.
type Result struct {
	Products []registry.Product
	Written  []string
}

// Generator produces candidate artifacts from a product pack repository.
type Generator struct {
	packsDir           string
	candidatesDir      string
	candidateIndexPath string
	schemaPath         string
	logger             *zerolog.Logger
	titler             cases.Caser
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a generator reading packs from packsDir and writing candidate
// artifacts into the registry tree described by snap. Only the derived
// candidate paths are retained; the canonical paths are not.
func New(packsDir string, snap registry.Snapshot, opts ...Option) *Generator {
	g := &Generator{
		packsDir:           packsDir,
		candidatesDir:      snap.CandidatesDir(),
		candidateIndexPath: snap.CandidateIndexPath(),
		schemaPath:         snap.SchemaPath,
		logger:             logging.Default(),
		titler:             cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run discovers product packs, assembles candidate products, and writes the
// candidate exports and the candidate table.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	products, err := g.Collect(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := schema.LoadOrEmbedded(g.schemaPath)
	if err != nil {
		return nil, err
	}

	artifacts, err := export.Generate(products, doc.SchemaVersion)
	if err != nil {
		return nil, err
	}

	table, err := renderCandidateTable(products)
	if err != nil {
		return nil, err
	}

	legacyPath := filepath.Join(g.candidatesDir, constants.CandidateLegacyExportName)
	versionedPath := filepath.Join(g.candidatesDir, constants.CandidateVersionedExportName)

	written := []string{legacyPath, versionedPath, g.candidateIndexPath}
	if err := fileio.WriteAtomic(legacyPath, artifacts.Legacy); err != nil {
		return nil, err
	}
	if err := fileio.WriteAtomic(versionedPath, artifacts.Versioned); err != nil {
		return nil, err
	}
	if err := fileio.WriteAtomic(g.candidateIndexPath, table); err != nil {
		return nil, err
	}

	g.logger.Info().
		Int("candidates", len(products)).
		Str("dir", g.candidatesDir).
		Msg("Candidate artifacts written")
	return &Result{Products: products, Written: written}, nil
}

// Collect parses every product pack into a candidate product, sorted by TOIL
// ID. It performs no writes.
func (g *Generator) Collect(ctx context.Context) ([]registry.Product, error) {
	packs, err := discoverPacks(g.packsDir)
	if err != nil {
		return nil, err
	}

	products := make([]registry.Product, 0, len(packs))
	for _, pack := range packs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		product, err := g.parsePack(pack)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	registry.SortProducts(products)
	g.logger.Debug().Int("packs", len(packs)).Str("dir", g.packsDir).Msg("Collected product packs")
	return products, nil
}

// discoverPacks returns the pack directories under dir, sorted by name. A
// directory qualifies as a pack when it carries a README.md.
func discoverPacks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	var packs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		readme := filepath.Join(dir, entry.Name(), "README.md")
		if _, err := os.Stat(readme); err == nil {
			packs = append(packs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(packs)
	return packs, nil
}

// parsePack assembles one candidate product from a pack's README and its
// optional metadata sidecar.
func (g *Generator) parsePack(dir string) (registry.Product, error) {
	readmePath := filepath.Join(dir, "README.md")
	data, err := os.ReadFile(readmePath)
	if err != nil {
		return registry.Product{}, errors.WrapIO("read", readmePath, err)
	}
	content := string(data)

	fields := records.ExtractFields(content)

	side, err := readSidecar(dir)
	if err != nil {
		return registry.Product{}, err
	}

	id := side.TOILID
	if id == "" {
		id = toilIDSearch.FindString(content)
	}
	if id == "" {
		return registry.Product{}, &errors.ParseError{
			Format:  "markdown",
			File:    readmePath,
			Message: "no TOIL ID found in pack",
		}
	}

	product := registry.Product{
		ID:           registry.TOILID(id),
		Name:         pick(side.ProductName, fields[records.FieldProductName], g.titleCaseFolder(filepath.Base(dir))),
		Category:     pick(side.Category, fields[records.FieldCategory]),
		LeadCreator:  pick(side.LeadCreator, fields[records.FieldLeadCreator], DefaultLeadCreator),
		Status:       registry.Status(pick(side.Status, fields[records.FieldStatus], string(DefaultStatus))),
		LicenseState: pick(side.LicenseState, fields[records.FieldLicenseState], DefaultLicenseState),
		Aliases:      pickList(side.Aliases, splitList(fields[records.FieldAliases])),
		LegacyIDs:    pickList(side.LegacyIDs, splitList(fields[records.FieldLegacyIDs])),
	}
	product.Normalize()
	return product, nil
}

// readSidecar loads the pack's structured metadata file, if any.
func readSidecar(dir string) (sidecar, error) {
	for _, name := range sidecarNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return sidecar{}, errors.WrapIO("read", path, err)
		}
		var side sidecar
		if err := yaml.Unmarshal(data, &side); err != nil {
			return sidecar{}, errors.WrapParse("yaml", path, err)
		}
		return side, nil
	}
	return sidecar{}, nil
}

// titleCaseFolder derives a display name from a pack folder name:
// "clean-drain-device" becomes "Clean Drain Device".
func (g *Generator) titleCaseFolder(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return g.titler.String(name)
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func pickList(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// renderCandidateTable renders the review-only candidate table document.
func renderCandidateTable(products []registry.Product) ([]byte, error) {
	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = []string{
			p.ID.String(),
			p.Name,
			p.Category,
			p.LeadCreator,
			string(p.Status),
			p.LicenseState,
			strings.Join(p.Aliases, ", "),
			strings.Join(p.LegacyIDs, ", "),
		}
	}

	buf := &bytes.Buffer{}
	err := md.NewMarkdown(buf).
		H1("TOIL Product Index Candidates").
		PlainText("Review-only output generated from an external product source. Not authoritative.").
		LF().
		PlainText(CandidateMarker).
		LF().
		Table(md.TableSet{
			Header: []string{
				"TOIL ID", "Product Name", "Category", "Lead Creator",
				"Status", "License State", "Aliases (Optional)", "Legacy IDs (Optional)",
			},
			Rows: rows,
		}).
		Build()
	if err != nil {
		return nil, errors.WrapIO("write", constants.CandidateIndexName, err)
	}
	return buf.Bytes(), nil
}
