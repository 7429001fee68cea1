package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tech4life-beyond/toil-registry/internal/cmd/output"
	"github.com/tech4life-beyond/toil-registry/pkg/pipeline"
	"github.com/tech4life-beyond/toil-registry/pkg/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report every registry invariant violation without writing",
	Long: `Validate runs the cross-validator over the canonical index and the
record store, then checks the committed export artifacts against the
declared schema when they exist. All violations are reported in one run.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cobraCmd *cobra.Command, _ []string) error {
	p := pipeline.New(snapshot())

	result, err := p.Validate(cobraCmd.Context())
	if err == nil {
		count := 0
		if result != nil {
			count = len(result.Products)
		}
		fmt.Printf("Registry is valid (%d products)\n", count)
		return nil
	}

	if result != nil && len(result.Violations) > 0 {
		if printErr := printViolations(result.Violations); printErr != nil {
			return printErr
		}
	}
	return err
}

// printViolations renders the violation report in the selected output format.
func printViolations(violations []validate.Violation) error {
	type row struct {
		ID     string `json:"toil_id" yaml:"toil_id"`
		Kind   string `json:"kind" yaml:"kind"`
		Detail string `json:"detail" yaml:"detail"`
	}

	rows := make([]row, len(violations))
	tableRows := make([][]string, len(violations))
	for i, v := range violations {
		rows[i] = row{ID: v.ID, Kind: string(v.Kind), Detail: v.Err.Error()}
		tableRows[i] = []string{v.ID, string(v.Kind), v.Err.Error()}
	}

	format, err := output.ParseFormat(flagOutput)
	if err != nil {
		format = output.FormatTable
	}

	f := output.NewFormatter(format)
	if format == output.FormatTable || format == "" {
		return f.Format(os.Stderr, output.Data{
			Headers: []string{"TOIL ID", "Kind", "Detail"},
			Rows:    tableRows,
		})
	}
	return f.Format(os.Stderr, rows)
}
