package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/report"
	"github.com/royalelab/crmetrics/internal/storage"
)

var playerCmd = &cobra.Command{
	Use:   "player <tag>",
	Short: "Show the full feature profile for one player",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayer,
}

func runPlayer(cmd *cobra.Command, args []string) error {
	tag := args[0]
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	a, err := db.GetPlayerAggregate(tag)
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if a == nil {
		return fmt.Errorf("no features stored for %s; run 'crmetrics features' first", tag)
	}

	report.PrintPlayerProfile(os.Stdout, *a)
	return nil
}
