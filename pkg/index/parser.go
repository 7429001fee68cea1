// Package index parses the canonical TOIL product index document.
//
// The document embeds exactly one qualifying markdown table whose header row
// carries the full required column set. The parser extracts raw rows in
// document order; semantic validation (identifier format, cross-references)
// is the cross-validator's job, keeping parsing independently testable.
package index

import (
	"os"
	"regexp"
	"strings"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

// Required column headers of the canonical index table. Order-insensitive;
// all are mandatory for a table to qualify.
const (
	HeaderTOILID       = "TOIL ID"
	HeaderProductName  = "Product Name"
	HeaderCategory     = "Category"
	HeaderLeadCreator  = "Lead Creator"
	HeaderStatus       = "Status"
	HeaderLicenseState = "License State"
	HeaderAliases      = "Aliases (Optional)"
	HeaderLegacyIDs    = "Legacy IDs (Optional)"
)

// RequiredHeaders returns the required column set in canonical order.
func RequiredHeaders() []string {
	return []string{
		HeaderTOILID,
		HeaderProductName,
		HeaderCategory,
		HeaderLeadCreator,
		HeaderStatus,
		HeaderLicenseState,
		HeaderAliases,
		HeaderLegacyIDs,
	}
}

var separatorCell = regexp.MustCompile(`^:?-{3,}:?$`)

// ParseFile reads and parses the canonical index document at path.
func ParseFile(path string) ([]registry.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(path, string(data))
}

// Parse extracts the product entries from the index document text. The path
// is used for error reporting only.
//
// The full document is always scanned to completion so the table count is
// exact: a second qualifying table is a hard DuplicateTableError regardless
// of table content, and a missing table is a MissingTableError. A row whose
// column count differs from the header is a MalformedRowError, reported only
// after the scan finishes and only when the table count is not already fatal.
func Parse(path, text string) ([]registry.Product, error) {
	lines := strings.Split(text, "\n")

	var products []registry.Product
	var malformed *errors.MalformedRowError
	tables := 0
	i := 0
	for i < len(lines) {
		cells, ok := tableRow(lines[i])
		if !ok || !qualifies(cells) {
			i++
			continue
		}

		tables++
		if tables > 1 {
			// Keep counting so the error reports the total.
			i = skipTable(lines, i+1)
			continue
		}

		columns := headerIndices(cells)
		width := len(cells)
		i++

		// Optional separator row directly below the header.
		if i < len(lines) {
			if sep, ok := tableRow(lines[i]); ok && isSeparator(sep) {
				i++
			}
		}

		for i < len(lines) {
			rowCells, ok := tableRow(lines[i])
			if !ok {
				break
			}
			if isSeparator(rowCells) {
				i++
				continue
			}
			if len(rowCells) != width {
				malformed = &errors.MalformedRowError{Path: path, Line: i + 1, Got: len(rowCells), Want: width}
				// Skip the rest of this table; further qualifying tables
				// must still be counted.
				i = skipTable(lines, i)
				break
			}
			products = append(products, rowToProduct(rowCells, columns))
			i++
		}
	}

	if tables == 0 {
		return nil, &errors.MissingTableError{Path: path}
	}
	if tables > 1 {
		return nil, &errors.DuplicateTableError{Path: path, Count: tables}
	}
	if malformed != nil {
		return nil, malformed
	}
	return products, nil
}

// tableRow splits a markdown table line into trimmed cells. The second return
// is false for lines that are not table rows.
func tableRow(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") {
		return nil, false
	}
	trimmed = strings.Trim(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells, true
}

// qualifies reports whether a header row carries the full required column set.
func qualifies(cells []string) bool {
	present := make(map[string]bool, len(cells))
	for _, c := range cells {
		present[c] = true
	}
	for _, required := range RequiredHeaders() {
		if !present[required] {
			return false
		}
	}
	return true
}

// headerIndices maps each required header to its column position.
func headerIndices(cells []string) map[string]int {
	columns := make(map[string]int, len(RequiredHeaders()))
	for i, c := range cells {
		columns[c] = i
	}
	return columns
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}

// skipTable advances past the body of a table starting at the line after its
// header and returns the index of the first line beyond it.
func skipTable(lines []string, start int) int {
	i := start
	for i < len(lines) {
		if _, ok := tableRow(lines[i]); !ok {
			break
		}
		i++
	}
	return i
}

func rowToProduct(cells []string, columns map[string]int) registry.Product {
	get := func(header string) string {
		idx, ok := columns[header]
		if !ok || idx >= len(cells) {
			return ""
		}
		return cells[idx]
	}

	return registry.Product{
		ID:           registry.TOILID(get(HeaderTOILID)),
		Name:         get(HeaderProductName),
		Category:     get(HeaderCategory),
		LeadCreator:  get(HeaderLeadCreator),
		Status:       registry.Status(get(HeaderStatus)),
		LicenseState: get(HeaderLicenseState),
		Aliases:      splitList(get(HeaderAliases)),
		LegacyIDs:    splitList(get(HeaderLegacyIDs)),
	}
}

// splitList parses a comma-separated optional cell into an ordered sequence,
// dropping empty items.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
