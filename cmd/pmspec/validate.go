package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check referential integrity across the data directory",
	Long: `Scan every epic and feature and report dangling references: features
pointing at missing epics, and epic feature lists naming missing
features. Exits non-zero when problems are found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		findings, err := s.Validate()
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(findings)
		}

		if len(findings) == 0 {
			fmt.Printf("%s No integrity problems found\n", ui.Success.Render("✓"))
			return nil
		}
		for _, f := range findings {
			fmt.Printf("%s %s: %s\n", ui.Warning.Render("⚠"), ui.ID.Render(f.EntityID), f.Message)
		}
		return fmt.Errorf("%d integrity problem(s) found", len(findings))
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Rebuild epic feature lists from feature files",
	Long: `Re-derive every epic's feature list from the features' own epic
references and rewrite epics that drifted. This fixes membership lost
to interrupted writes or hand edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		repaired, err := s.RepairEpicMembership()
		if err != nil {
			return err
		}

		if repaired == 0 {
			fmt.Printf("%s Epic membership already consistent\n", ui.Success.Render("✓"))
		} else {
			fmt.Printf("%s Repaired %d epic(s)\n", ui.Success.Render("✓"), repaired)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(repairCmd)
}
