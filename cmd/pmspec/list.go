package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List epics, features or milestones",
}

var listEpicsCmd = &cobra.Command{
	Use:   "epics",
	Short: "List all epics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		epics, err := s.ListEpics()
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(epics)
		}
		if len(epics) == 0 {
			fmt.Println("No epics found")
			return nil
		}
		fmt.Println(ui.Header.Render("Epics"))
		for _, e := range epics {
			fmt.Printf("  %s  %-12s  %s  %s\n",
				ui.ID.Render(e.ID), ui.Status(string(e.Status)), e.Title,
				ui.Muted.Render(fmt.Sprintf("(%d features)", len(e.Features))))
		}
		return nil
	},
}

var listFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "List features, optionally scoped to one epic or status",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		features, err := s.ListFeatures()
		if err != nil {
			return err
		}

		epicFilter, _ := cmd.Flags().GetString("epic")
		statusFilter, _ := cmd.Flags().GetString("status")
		filtered := features[:0:0]
		for _, f := range features {
			if epicFilter != "" && !strings.EqualFold(f.EpicID, epicFilter) {
				continue
			}
			if statusFilter != "" && string(f.Status) != statusFilter {
				continue
			}
			filtered = append(filtered, f)
		}

		if jsonOutput(cmd) {
			return printJSON(filtered)
		}
		if len(filtered) == 0 {
			fmt.Println("No features found")
			return nil
		}
		fmt.Println(ui.Header.Render("Features"))
		for _, f := range filtered {
			fmt.Printf("  %s  %-12s  %-8s  %s  %s\n",
				ui.ID.Render(f.ID), ui.Status(string(f.Status)), ui.Priority(string(f.Priority)),
				f.Title, ui.Muted.Render(f.EpicID))
		}
		return nil
	},
}

var listMilestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List all milestones",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		milestones, err := s.ListMilestones()
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(milestones)
		}
		if len(milestones) == 0 {
			fmt.Println("No milestones found")
			return nil
		}
		fmt.Println(ui.Header.Render("Milestones"))
		for _, m := range milestones {
			target := m.TargetDate
			if target == "" {
				target = "unscheduled"
			}
			fmt.Printf("  %s  %-10s  %s  %s\n",
				ui.ID.Render(m.ID), ui.Status(string(m.Status)), m.Title,
				ui.Muted.Render(target))
		}
		return nil
	},
}

func init() {
	listFeaturesCmd.Flags().String("epic", "", "Only features belonging to this epic")
	listFeaturesCmd.Flags().String("status", "", "Only features with this status")

	listCmd.AddCommand(listEpicsCmd)
	listCmd.AddCommand(listFeaturesCmd)
	listCmd.AddCommand(listMilestonesCmd)
	rootCmd.AddCommand(listCmd)
}
