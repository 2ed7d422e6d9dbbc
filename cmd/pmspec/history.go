package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/changelog"
	"github.com/pmspec/pmspec/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history [entity-id]",
	Short: "Show the change history",
	Long: `Query the append-only changelog, newest first. With an entity ID the
history is scoped to that entity; flags narrow further by type, action
and time window.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		svc := changelog.NewService(s.Root())

		opts := changelog.Options{}
		if len(args) == 1 {
			opts.EntityID = strings.ToUpper(args[0])
		}
		if v, _ := cmd.Flags().GetString("type"); v != "" {
			opts.EntityType = changelog.EntityType(v)
		}
		if v, _ := cmd.Flags().GetString("action"); v != "" {
			opts.Action = changelog.Action(v)
		}
		if v, _ := cmd.Flags().GetString("since"); v != "" {
			dateStr, err := parseDate(v)
			if err != nil {
				return err
			}
			opts.Since, _ = time.Parse("2006-01-02", dateStr)
		}
		if v, _ := cmd.Flags().GetString("until"); v != "" {
			dateStr, err := parseDate(v)
			if err != nil {
				return err
			}
			// Cover the whole named day.
			d, _ := time.Parse("2006-01-02", dateStr)
			opts.Until = d.Add(24*time.Hour - time.Second)
		}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Offset, _ = cmd.Flags().GetInt("offset")

		entries, err := svc.Query(opts)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No history entries found")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-9s %-7s %s",
				ui.Muted.Render(e.Timestamp), e.EntityType, e.Action, ui.ID.Render(e.EntityID))
			if e.Field != "" {
				line += fmt.Sprintf("  %s: %v → %v", e.Field, compact(e.OldValue), compact(e.NewValue))
			}
			if e.User != "" {
				line += "  " + ui.Muted.Render("by "+e.User)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize changelog activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		svc := changelog.NewService(s.Root())

		stats, err := svc.GetStats()
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(stats)
		}

		fmt.Println(ui.Header.Render("Changelog"))
		fmt.Printf("  Total entries: %d\n", stats.TotalEntries)
		fmt.Printf("  Last 24h: %d   Last 7d: %d   Last 30d: %d\n", stats.Last24h, stats.Last7d, stats.Last30d)
		if len(stats.ByEntityType) > 0 {
			fmt.Println("  By type:")
			for t, n := range stats.ByEntityType {
				fmt.Printf("    %-10s %d\n", t, n)
			}
		}
		if len(stats.ByAction) > 0 {
			fmt.Println("  By action:")
			for a, n := range stats.ByAction {
				fmt.Printf("    %-10s %d\n", a, n)
			}
		}
		return nil
	},
}

// compact renders a changelog value on one line, trimming long payloads.
func compact(v any) string {
	if v == nil {
		return "-"
	}
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}

func init() {
	historyCmd.Flags().String("type", "", "Filter by entity type: epic, feature, milestone, story")
	historyCmd.Flags().String("action", "", "Filter by action: create, update, delete")
	historyCmd.Flags().String("since", "", "Only entries at or after this date")
	historyCmd.Flags().String("until", "", "Only entries up to and including this date")
	historyCmd.Flags().Int("limit", 0, "Maximum entries to show (default 50)")
	historyCmd.Flags().Int("offset", 0, "Entries to skip")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}
