package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/storage"
)

var (
	sampleFraction float64
	sampleOut      string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a random sample of the stored battles to a new database",
	Long: "Draw a Bernoulli sample of the imported battles and write it to a\n" +
		"separate database file, for faster iteration on large datasets.",
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().Float64Var(&sampleFraction, "fraction", 0, "sample fraction in (0, 1] (default from CRMETRICS_SAMPLE_FRACTION)")
	sampleCmd.Flags().StringVar(&sampleOut, "out", "", "output database path (required)")
	_ = sampleCmd.MarkFlagRequired("out")
}

func runSample(cmd *cobra.Command, args []string) error {
	fraction := sampleFraction
	if !cmd.Flags().Changed("fraction") {
		fraction = cfg.SampleFraction
	}
	if fraction <= 0 || fraction > 1 {
		return fmt.Errorf("fraction must be in (0, 1], got %g", fraction)
	}
	if sampleOut == dbPath {
		return fmt.Errorf("output database must differ from the source database")
	}

	src, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer src.Close()

	battles, err := src.SampleBattles(fraction)
	if err != nil {
		return fmt.Errorf("sample battles: %w", err)
	}
	log.Debug().Int("battles", len(battles)).Float64("fraction", fraction).Msg("sample drawn")

	dst, err := storage.Open(sampleOut)
	if err != nil {
		return fmt.Errorf("open output storage: %w", err)
	}
	defer dst.Close()

	if err := dst.InsertBattles(battles); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Sampled %d battles into %s\n", len(battles), sampleOut)
	return nil
}
