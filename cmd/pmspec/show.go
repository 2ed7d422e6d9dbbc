package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/project"
	"github.com/pmspec/pmspec/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entity in full",
	Long:  "Show an epic, feature or milestone by ID. The entity kind is inferred from the ID prefix.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		id := strings.ToUpper(args[0])
		switch {
		case strings.HasPrefix(id, project.PrefixEpic+"-"):
			epic, err := s.GetEpic(id)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(epic)
			}
			printEpic(epic)
			return nil

		case strings.HasPrefix(id, project.PrefixFeature+"-"):
			feature, err := s.GetFeature(id)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(feature)
			}
			printFeature(feature)
			return nil

		case strings.HasPrefix(id, project.PrefixMilestone+"-"):
			milestone, err := s.GetMilestone(id)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(milestone)
			}
			printMilestone(milestone)
			return nil

		default:
			return fmt.Errorf("unrecognized ID %q (expected EPIC-, FEAT- or MILE- prefix)", args[0])
		}
	},
}

func printEpic(e *project.Epic) {
	fmt.Printf("%s %s\n", ui.ID.Render(e.ID), ui.Header.Render(e.Title))
	fmt.Printf("  Status:   %s\n", ui.Status(string(e.Status)))
	if e.Owner != "" {
		fmt.Printf("  Owner:    %s\n", e.Owner)
	}
	if e.Estimate > 0 {
		fmt.Printf("  Estimate: %gh (actual %gh)\n", e.Estimate, e.Actual)
	}
	if e.Description != "" {
		fmt.Printf("  %s\n", e.Description)
	}
	if len(e.Features) > 0 {
		fmt.Printf("  Features: %s\n", strings.Join(e.Features, ", "))
	}
}

func printFeature(f *project.Feature) {
	fmt.Printf("%s %s\n", ui.ID.Render(f.ID), ui.Header.Render(f.Title))
	fmt.Printf("  Epic:     %s\n", f.EpicID)
	fmt.Printf("  Status:   %s  Priority: %s\n", ui.Status(string(f.Status)), ui.Priority(string(f.Priority)))
	if f.Assignee != "" {
		fmt.Printf("  Assignee: %s\n", f.Assignee)
	}
	if f.Estimate > 0 {
		fmt.Printf("  Estimate: %gh (actual %gh)\n", f.Estimate, f.Actual)
	}
	if len(f.SkillsRequired) > 0 {
		fmt.Printf("  Skills:   %s\n", strings.Join(f.SkillsRequired, ", "))
	}
	if f.Description != "" {
		fmt.Printf("  %s\n", f.Description)
	}
	if len(f.Dependencies) > 0 {
		fmt.Println("  Dependencies:")
		for _, d := range f.Dependencies {
			fmt.Printf("    %s: %s\n", d.Type, d.FeatureID)
		}
	}
	if len(f.UserStories) > 0 {
		fmt.Println("  User Stories:")
		for _, st := range f.UserStories {
			mark := " "
			if st.Status == project.StoryDone {
				mark = "x"
			}
			fmt.Printf("    [%s] %s %s (%gh)\n", mark, ui.ID.Render(st.ID), st.Title, st.Estimate)
		}
	}
	if len(f.AcceptanceCriteria) > 0 {
		fmt.Println("  Acceptance Criteria:")
		for _, c := range f.AcceptanceCriteria {
			fmt.Printf("    - %s\n", c)
		}
	}
}

func printMilestone(m *project.Milestone) {
	fmt.Printf("%s %s\n", ui.ID.Render(m.ID), ui.Header.Render(m.Title))
	fmt.Printf("  Status: %s\n", ui.Status(string(m.Status)))
	if m.TargetDate != "" {
		fmt.Printf("  Target: %s\n", m.TargetDate)
	}
	if m.Description != "" {
		fmt.Printf("  %s\n", m.Description)
	}
	if len(m.Features) > 0 {
		fmt.Printf("  Features: %s\n", strings.Join(m.Features, ", "))
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
