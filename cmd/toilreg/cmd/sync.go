package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tech4life-beyond/toil-registry/pkg/sync"
)

var syncProducts string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Generate review-only candidate artifacts from a product source",
	Long: `Sync reads an external product pack repository and renders candidate
export artifacts plus a candidate table for review.

Candidate artifacts live under distinct names; the canonical index and
the canonical exports are never touched.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncProducts, "products", "../products", "product pack repository to ingest")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cobraCmd *cobra.Command, _ []string) error {
	g := sync.New(syncProducts, snapshot())

	result, err := g.Run(cobraCmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d candidate products:\n", len(result.Products))
	for _, path := range result.Written {
		fmt.Println(" ", path)
	}
	return nil
}
