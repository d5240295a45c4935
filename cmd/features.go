package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/storage"
	"github.com/royalelab/crmetrics/internal/timeline"
)

var (
	featMinMatches int
	featChurnDays  int
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Run the feature pipeline over the stored battles",
	Long: "Build the per-player timeline, engineer temporal features, aggregate\n" +
		"behavioral features, label churn, and persist the results.",
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

func init() {
	featuresCmd.Flags().IntVar(&featMinMatches, "min-matches", 0, "minimum battles per player (default from CRMETRICS_MIN_MATCHES)")
	featuresCmd.Flags().IntVar(&featChurnDays, "churn-days", 0, "inactivity days for the churn label (default from CRMETRICS_CHURN_DAYS)")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	minMatches := featMinMatches
	if !cmd.Flags().Changed("min-matches") {
		minMatches = cfg.MinMatches
	}
	churnDays := featChurnDays
	if !cmd.Flags().Changed("churn-days") {
		churnDays = cfg.ChurnDays
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	battles, err := db.LoadBattles()
	if err != nil {
		return fmt.Errorf("load battles: %w", err)
	}
	if len(battles) == 0 {
		return fmt.Errorf("no battles stored; run 'crmetrics import' first")
	}
	log.Info().Int("battles", len(battles)).Msg("building timeline")

	rows := timeline.BuildTimeline(battles)
	timeline.EngineerTemporalFeatures(rows)
	log.Debug().Int("rows", len(rows)).Msg("temporal features done")

	aggs := timeline.AggregatePlayers(rows, minMatches)
	timeline.LabelChurn(aggs, float64(churnDays))
	buckets := timeline.TiltByStreakBucket(rows)

	if err := db.ReplacePlayerAggregates(aggs); err != nil {
		return fmt.Errorf("store aggregates: %w", err)
	}
	if err := db.ReplaceBucketTilts(buckets); err != nil {
		return fmt.Errorf("store tilt buckets: %w", err)
	}

	churned := 0
	for i := range aggs {
		churned += aggs[i].Churned
	}
	log.Info().Int("players", len(aggs)).Int("churned", churned).Msg("feature pipeline complete")
	fmt.Fprintf(os.Stdout,
		"Computed features for %d players (min %d matches); %d labeled churned (>%d idle days)\n",
		len(aggs), minMatches, churned, churnDays)
	return nil
}
