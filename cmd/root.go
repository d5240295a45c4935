package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/config"
)

var (
	cfg     *config.Config
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "crmetrics",
	Short: "Clash Royale battle-log analytics tool",
	Long: "Ingest Clash Royale ladder battle logs and compute per-player temporal,\n" +
		"behavioral, and churn features.",
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the environment config and configures logging. Explicit flags
// win over environment values.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("db") {
		dbPath = cfg.DBPath
	}

	level := zerolog.InfoLevel
	if verbose || cfg.Verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "crmetrics.db", "path to SQLite database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(peekCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(namesCmd)
	rootCmd.AddCommand(fetchCardsCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(tiltCmd)
	rootCmd.AddCommand(matchupsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}
