package main

import (
	"fmt"
	"os"
	"sort"

	"crateprobe/internal/stability"

	"github.com/spf13/cobra"
)

var indexRebuildFlag bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or load the standard-library stability index",
	Long: `Builds the versioned symbol index from the expanded standard-library
sources under <root>/stdlib/, or loads the cached snapshot when present.
Use --rebuild to discard the snapshot and re-scan the sources.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRebuildFlag, "rebuild", false,
		"Discard any cached snapshot and re-scan the expanded sources")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	if indexRebuildFlag {
		if err := os.Remove(cfg.SnapshotFile()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing snapshot: %w", err)
		}
	}

	ix, err := stability.LoadOrBuild(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	crates := ix.Crates()
	sort.Strings(crates)
	fmt.Printf("index ready: crates=%v aliases=%d snapshot=%s\n",
		crates, len(ix.Aliases()), cfg.SnapshotFile())
	return nil
}
