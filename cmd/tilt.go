package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/report"
	"github.com/royalelab/crmetrics/internal/storage"
)

var tiltCmd = &cobra.Command{
	Use:   "tilt",
	Short: "Show fast-return behavior by loss-streak bucket",
	Args:  cobra.NoArgs,
	RunE:  runTilt,
}

func runTilt(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	buckets, err := db.GetBucketTilts()
	if err != nil {
		return fmt.Errorf("load tilt buckets: %w", err)
	}
	if len(buckets) == 0 {
		return fmt.Errorf("no tilt data stored; run 'crmetrics features' first")
	}

	report.PrintTiltTable(os.Stdout, buckets)
	return nil
}
