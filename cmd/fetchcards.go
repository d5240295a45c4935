package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/cards"
)

var (
	fetchCardsAPIKey string
	fetchCardsOut    string
)

var fetchCardsCmd = &cobra.Command{
	Use:   "fetch-cards",
	Short: "Download the card catalog from the Clash Royale API",
	Long: "Fetch the full card list from the official API and save it as a\n" +
		"catalog JSON file for the names command.",
	Args: cobra.NoArgs,
	RunE: runFetchCards,
}

func init() {
	fetchCardsCmd.Flags().StringVar(&fetchCardsAPIKey, "api-key", "", "API bearer token (falls back to $CRMETRICS_API_KEY)")
	fetchCardsCmd.Flags().StringVar(&fetchCardsOut, "out", "cards.json", "output JSON path")
}

func runFetchCards(cmd *cobra.Command, args []string) error {
	apiKey := fetchCardsAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: pass --api-key or set CRMETRICS_API_KEY")
	}

	client := cards.NewClient(apiKey)
	data, err := client.FetchCards()
	if err != nil {
		return fmt.Errorf("fetch cards: %w", err)
	}

	catalog, err := cards.ParseCatalog(data)
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	log.Debug().Int("cards", catalog.Len()).Msg("catalog fetched")

	if err := os.WriteFile(fetchCardsOut, data, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Saved %d cards to %s\n", catalog.Len(), fetchCardsOut)
	return nil
}
