package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/timeline"
	"github.com/pmspec/pmspec/internal/ui"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Compute a Gantt-style schedule for the whole project",
	Long: `Schedule every epic and feature onto working days (8-hour days,
weekends skipped). Features inside an epic run sequentially; the epic
task spans them. The critical path lists the epics that carry actual
scheduled work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		epics, err := s.ListEpics()
		if err != nil {
			return err
		}
		features, err := s.ListFeatures()
		if err != nil {
			return err
		}

		opts := timeline.Options{Start: time.Now()}
		if startFlag, _ := cmd.Flags().GetString("start"); startFlag != "" {
			dateStr, err := parseDate(startFlag)
			if err != nil {
				return err
			}
			opts.Start, _ = time.Parse("2006-01-02", dateStr)
		}

		plan := timeline.Schedule(epics, features, opts)

		if jsonOutput(cmd) {
			return printJSON(plan)
		}

		if len(plan.Tasks) == 0 {
			fmt.Println("Nothing to schedule")
			return nil
		}
		fmt.Println(ui.Header.Render("Timeline"))
		for _, t := range plan.Tasks {
			indent := ""
			if t.Type == timeline.TaskFeature {
				indent = "  "
			}
			fmt.Printf("  %s%s  %s → %s  %s  %s\n",
				indent, ui.ID.Render(t.ID), t.Start, t.End,
				ui.Muted.Render(fmt.Sprintf("%3.0f%%", t.Progress)), t.Name)
		}
		if len(plan.CriticalPath) > 0 {
			fmt.Printf("\n%s %v\n", ui.Header.Render("Critical path:"), plan.CriticalPath)
		}
		return nil
	},
}

func init() {
	timelineCmd.Flags().String("start", "", "Schedule start date (YYYY-MM-DD or natural language; default today)")
	rootCmd.AddCommand(timelineCmd)
}
