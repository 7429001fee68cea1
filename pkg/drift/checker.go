// Package drift compares freshly generated export artifacts with the
// committed ones on disk. It is the non-mutating guard that keeps generated
// state from silently diverging from the canonical text sources.
package drift

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
)

// Check compares the committed artifact at path with the generated bytes.
// Identical bytes pass. Any divergence, including a missing committed file,
// is a DriftDetectedError carrying a readable diff. Check never writes.
func Check(path string, generated []byte) error {
	committed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &errors.DriftDetectedError{Artifact: path, Diff: "committed artifact does not exist"}
		}
		return errors.WrapIO("read", path, err)
	}

	if bytes.Equal(committed, generated) {
		return nil
	}

	return &errors.DriftDetectedError{Artifact: path, Diff: describe(committed, generated)}
}

// CheckAgreement verifies the committed legacy artifact equals the committed
// versioned artifact's products list, the backward-compatibility contract
// between the two shapes.
func CheckAgreement(legacyPath, versionedPath string) error {
	legacyData, err := os.ReadFile(legacyPath)
	if err != nil {
		return errors.WrapIO("read", legacyPath, err)
	}
	versionedData, err := os.ReadFile(versionedPath)
	if err != nil {
		return errors.WrapIO("read", versionedPath, err)
	}

	var legacy []any
	if err := json.Unmarshal(legacyData, &legacy); err != nil {
		return errors.WrapParse("json", legacyPath, err)
	}
	var versioned struct {
		Products []any `json:"products"`
	}
	if err := json.Unmarshal(versionedData, &versioned); err != nil {
		return errors.WrapParse("json", versionedPath, err)
	}

	if diff := cmp.Diff(versioned.Products, legacy); diff != "" {
		return &errors.DriftDetectedError{
			Artifact: legacyPath,
			Diff:     "legacy export does not match versioned products list:\n" + diff,
		}
	}
	return nil
}

// describe builds a readable report: a structural diff when both sides parse
// as JSON, otherwise a line diff of the raw text.
func describe(committed, generated []byte) string {
	var committedVal, generatedVal any
	if json.Unmarshal(committed, &committedVal) == nil && json.Unmarshal(generated, &generatedVal) == nil {
		if diff := cmp.Diff(generatedVal, committedVal); diff != "" {
			return "committed artifact differs from generated (-generated +committed):\n" + diff
		}
		// Structurally equal but byte-different: formatting drift.
		return "formatting differs from generated output:\n" + lineDiff(committed, generated)
	}
	return lineDiff(committed, generated)
}

// lineDiff renders a compact line-level diff of committed vs generated text.
func lineDiff(committed, generated []byte) string {
	dmp := diffmatchpatch.New()
	runes1, runes2, lines := dmp.DiffLinesToRunes(string(generated), string(committed))
	diffs := dmp.DiffMainRunes(runes1, runes2, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var b strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
