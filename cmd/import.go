package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/battlecsv"
	"github.com/royalelab/crmetrics/internal/model"
	"github.com/royalelab/crmetrics/internal/storage"
)

const importBatchSize = 5000

var importCmd = &cobra.Command{
	Use:   "import <battles.csv>",
	Short: "Import a battle-log CSV into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r, err := battlecsv.NewReader(f)
	if err != nil {
		return err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	var batch []model.BattleRecord
	total, skipped := 0, 0
	for {
		b, err := r.Read()
		if err == io.EOF {
			break
		}
		var dfe *model.DataFormatError
		if errors.As(err, &dfe) {
			skipped++
			log.Debug().Str("column", dfe.Column).Str("value", dfe.Value).
				Msg("skipping malformed row")
			continue
		}
		if err != nil {
			return err
		}
		batch = append(batch, b)
		if len(batch) >= importBatchSize {
			if err := db.InsertBattles(batch); err != nil {
				return err
			}
			total += len(batch)
			batch = batch[:0]
			log.Debug().Int("battles", total).Msg("import progress")
		}
	}
	if err := db.InsertBattles(batch); err != nil {
		return err
	}
	total += len(batch)

	log.Info().Int("battles", total).Int("skipped", skipped).Msg("import complete")
	fmt.Fprintf(os.Stdout, "Imported %d battles (%d malformed rows skipped) into %s\n",
		total, skipped, dbPath)
	return nil
}
