package export

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appexport "ramble/internal/app/export"
	"ramble/internal/app/repository"
	"ramble/internal/app/repository/pg"
	"ramble/internal/app/repository/sqlite"
	"ramble/internal/config"
)

var (
	outputPath string
	format     string
	model      string
)

func init() {
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path")
	Cmd.Flags().StringVarP(&format, "format", "f", "csv", "export format: csv, json or xlsx")
	Cmd.Flags().StringVar(&model, "model", "", "only export rows for this model")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transcription history to a file",
	Long: `Export stored transcription history to a file.

Reads the history database directly (RAMBLE_DB_DRIVER, RAMBLE_DB_PATH
or DATABASE_URL), so it works without a running server.`,
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	exportFormat, err := appexport.ParseFormat(format)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dao, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer dao.Close()

	records, _, err := dao.List(repository.Query{Model: model, Limit: 10000})
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := appexport.Write(out, exportFormat, records); err != nil {
		return err
	}

	fmt.Printf("export finished, %d rows written to %s\n", len(records), outputPath)
	return nil
}

func openHistory(cfg *config.Config) (repository.RecordDAO, error) {
	if cfg.Database.Driver == "postgres" {
		db, err := pg.NewPostgresDB(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	return sqlite.NewSQLiteDB(cfg.Database.Path)
}
