package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/battlecsv"
	"github.com/royalelab/crmetrics/internal/model"
	"github.com/royalelab/crmetrics/internal/report"
)

var peekLimit int

var peekCmd = &cobra.Command{
	Use:   "peek <battles.csv>",
	Short: "Print the first rows of a battle-log CSV without importing",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeek,
}

func init() {
	peekCmd.Flags().IntVar(&peekLimit, "limit", 10, "number of battles to show")
}

func runPeek(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r, err := battlecsv.NewReader(f)
	if err != nil {
		return err
	}

	var battles []model.BattleRecord
	for len(battles) < peekLimit {
		b, err := r.Read()
		if err == io.EOF {
			break
		}
		var dfe *model.DataFormatError
		if errors.As(err, &dfe) {
			continue
		}
		if err != nil {
			return err
		}
		battles = append(battles, b)
	}

	if len(battles) == 0 {
		fmt.Fprintln(os.Stdout, "No parseable battles found.")
		return nil
	}
	report.PrintBattleTable(os.Stdout, battles)
	return nil
}
