package main

import (
	"fmt"
	"path/filepath"

	"crateprobe/internal/config"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default workspace configuration",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Root = rootFlag
	if err := cfg.Save(rootFlag); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", filepath.Join(rootFlag, config.ConfigDir, "config.json"))
	return nil
}
