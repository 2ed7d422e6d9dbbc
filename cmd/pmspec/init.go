package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/changelog"
	"github.com/pmspec/pmspec/internal/config"
	"github.com/pmspec/pmspec/internal/store"
	"github.com/pmspec/pmspec/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a project data directory",
	Long: `Create the data directory layout:

  <dir>/epics/
  <dir>/features/
  <dir>/milestones/
  <dir>/changelog.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dirFlag, _ := cmd.Flags().GetString("dir")
		dir, err := cfg.ResolveDataDir(dirFlag)
		if err != nil {
			return err
		}

		for _, sub := range []string{store.EpicsDir, store.FeaturesDir, store.MilestonesDir} {
			if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", sub, err)
			}
		}

		svc := changelog.NewService(dir)
		if _, err := os.Stat(svc.Path()); os.IsNotExist(err) {
			if err := svc.Init(); err != nil {
				return fmt.Errorf("failed to create changelog: %w", err)
			}
		}

		fmt.Printf("%s Initialized project data in %s\n", ui.Success.Render("✓"), dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
