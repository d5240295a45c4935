package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/storage"
	"github.com/royalelab/crmetrics/internal/timeline"
)

var (
	matrixOut     string
	matrixColumns string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Export the churn feature matrix as CSV",
	Long: "Write the model-ready feature matrix built from the stored player\n" +
		"aggregates: one row per player, selected feature columns, and the\n" +
		"churn label.",
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

func init() {
	matrixCmd.Flags().StringVar(&matrixOut, "out", "", "output CSV path (stdout if omitted)")
	matrixCmd.Flags().StringVar(&matrixColumns, "columns", "", "comma-separated feature columns (default: standard set)")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	aggs, err := db.ListPlayerAggregates("", 0)
	if err != nil {
		return fmt.Errorf("load aggregates: %w", err)
	}
	if len(aggs) == 0 {
		return fmt.Errorf("no aggregates stored; run 'crmetrics features' first")
	}

	var columns []string
	if matrixColumns != "" {
		for _, c := range strings.Split(matrixColumns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}

	x, y, names := timeline.BuildFeatureMatrix(aggs, columns)
	if len(names) == 0 {
		return fmt.Errorf("none of the requested columns exist")
	}

	out := os.Stdout
	if matrixOut != "" {
		f, err := os.Create(matrixOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	header := append([]string{"player_tag"}, names...)
	header = append(header, "churned")
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range x {
		rec := make([]string, 0, len(names)+2)
		rec = append(rec, aggs[i].PlayerTag)
		for _, v := range x[i] {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		rec = append(rec, strconv.Itoa(y[i]))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if matrixOut != "" {
		fmt.Fprintf(os.Stdout, "Wrote %d rows x %d features to %s\n", len(x), len(names), matrixOut)
	}
	return nil
}
