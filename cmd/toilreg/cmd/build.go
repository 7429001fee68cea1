package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tech4life-beyond/toil-registry/pkg/errors"
	"github.com/tech4life-beyond/toil-registry/pkg/pipeline"
)

var buildCheck bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validate the registry and write the export artifacts",
	Long: `Build parses the canonical index, reads the record store,
cross-validates them, and writes both JSON export artifacts atomically.

With --check, the artifacts are regenerated in memory and compared with
the committed ones instead; nothing is written and drift exits non-zero.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildCheck, "check", false, "compare regenerated artifacts with the committed ones; write nothing")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cobraCmd *cobra.Command, _ []string) error {
	p := pipeline.New(snapshot())
	ctx := cobraCmd.Context()

	if buildCheck {
		result, err := p.Check(ctx)
		if err != nil {
			reportDrift(err)
			return err
		}
		fmt.Printf("Committed artifacts match canonical sources (%d products)\n", len(result.Products))
		return nil
	}

	result, err := p.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s and %s (%d products)\n",
		p.Snapshot().LegacyExportPath(), p.Snapshot().VersionedExportPath(), len(result.Products))
	return nil
}

// reportDrift prints each drifted artifact with its diff on stderr.
func reportDrift(err error) {
	for _, e := range flatten(err) {
		var drift *errors.DriftDetectedError
		if errors.As(e, &drift) {
			fmt.Fprintf(os.Stderr, "drift in %s:\n%s\n", drift.Artifact, drift.Diff)
		}
	}
}

// flatten unwraps joined errors one level deep.
func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
