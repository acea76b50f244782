package main

import (
	"fmt"

	"crateprobe/internal/analyze"
	"crateprobe/internal/catalog"
	"crateprobe/internal/stability"
	"crateprobe/internal/stats"
	"crateprobe/internal/storage"
	"crateprobe/internal/toolchain"

	"github.com/spf13/cobra"
)

var (
	analyzeCatalogFlag string
	analyzeNameFlag    string
	analyzeVersionFlag string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [crate-dir]",
	Short: "Analyze crates against the stability index",
	Long: `Analyzes one crate directory, or every crate listed in a catalog file
when --catalog is given. Each crate is macro-expanded, walked against the
stability index, and its result record stored in the results database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCatalogFlag, "catalog", "",
		"YAML catalog of crates to analyze (mutually exclusive with a crate-dir argument)")
	analyzeCmd.Flags().StringVar(&analyzeNameFlag, "name", "",
		"Crate name override (default: from Cargo.toml)")
	analyzeCmd.Flags().StringVar(&analyzeVersionFlag, "version", "",
		"Crate version override (default: from Cargo.toml)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if (analyzeCatalogFlag == "") == (len(args) == 0) {
		return fmt.Errorf("exactly one of a crate-dir argument or --catalog is required")
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ix, err := stability.Global(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DatabaseFile(), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	cargo := toolchain.NewCargo(cfg.Toolchain.CargoPath, cfg.Toolchain.AllFeatures, logger)
	analyzer := analyze.New(cfg, ix, cargo, logger)

	var crates []analyze.CrateInfo
	if analyzeCatalogFlag != "" {
		cat, err := catalog.Load(analyzeCatalogFlag)
		if err != nil {
			return err
		}
		for _, entry := range cat.Crates {
			crates = append(crates, analyze.CrateInfo{
				Name:        entry.Name,
				Version:     entry.Version,
				PublishedAt: entry.PublishedAt,
				Path:        entry.Path,
			})
		}
	} else {
		crates = append(crates, analyze.CrateInfo{
			Name:    analyzeNameFlag,
			Version: analyzeVersionFlag,
			Path:    args[0],
		})
	}

	analyzed, failed := 0, 0
	for _, info := range crates {
		record, err := analyzer.AnalyzeCrate(cmd.Context(), info)
		if err != nil {
			// One broken crate does not abort a batch run.
			logger.Error("crate analysis failed", map[string]interface{}{
				"crate": info.Name,
				"path":  info.Path,
				"error": err.Error(),
			})
			failed++
			continue
		}
		if err := db.InsertRecord(record); err != nil {
			return err
		}
		printRecord(record)
		analyzed++
	}

	fmt.Printf("run %s: %d analyzed, %d failed\n", analyzer.RunID(), analyzed, failed)
	if failed > 0 && analyzed == 0 {
		return fmt.Errorf("all %d crates failed", failed)
	}
	return nil
}

func printRecord(r *stats.Record) {
	fmt.Printf("%s %s: signature=%s unsafe=%s (%d/%d exprs) clippy=%d\n",
		r.Name, r.Version,
		stats.FormatFloat(r.VersionSignature),
		stats.FormatFloat(r.UnsafeFraction),
		r.UnsafeExprs, r.TotalExprs,
		r.ClippyWarnings)
}
