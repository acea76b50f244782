package main

import (
	"fmt"
	"os"

	"crateprobe/internal/storage"

	"github.com/spf13/cobra"
)

var (
	exportRunFlag string
	exportOutFlag string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results as CSV",
	Long: `Writes stored analysis results as a CSV report, to stdout or to the
file given with --out. Use --run to restrict the export to one run.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportRunFlag, "run", "",
		"Only export records from the given run ID")
	exportCmd.Flags().StringVar(&exportOutFlag, "out", "",
		"Output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DatabaseFile(), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.ListRecords(exportRunFlag)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no stored results match")
	}

	out := os.Stdout
	if exportOutFlag != "" {
		f, err := os.Create(exportOutFlag)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return storage.ExportCSV(out, records)
}
