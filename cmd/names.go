package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/cards"
)

var (
	namesCardsPath string
	namesOut       string
)

var namesCmd = &cobra.Command{
	Use:   "names <battles.csv>",
	Short: "Append card name columns to a battle-log CSV",
	Long: "Map every card ID column in the CSV to its card name using a catalog\n" +
		"JSON file (see fetch-cards) and write the enriched CSV.",
	Args: cobra.ExactArgs(1),
	RunE: runNames,
}

func init() {
	namesCmd.Flags().StringVar(&namesCardsPath, "cards", "cards.json", "card catalog JSON file")
	namesCmd.Flags().StringVar(&namesOut, "out", "", "output CSV path (required)")
	_ = namesCmd.MarkFlagRequired("out")
}

func runNames(cmd *cobra.Command, args []string) error {
	catalog, err := cards.LoadCatalog(namesCardsPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.Debug().Int("cards", catalog.Len()).Msg("catalog loaded")

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer in.Close()

	out, err := os.Create(namesOut)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	stats, err := catalog.Enrich(in, out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Enriched %d rows (%d card ID columns) into %s\n",
		stats.Rows, len(stats.IDColumns), namesOut)
	return nil
}
