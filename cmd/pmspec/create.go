package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/project"
	"github.com/pmspec/pmspec/internal/ui"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an epic, feature, story or milestone",
}

var createEpicCmd = &cobra.Command{
	Use:   "epic <title>",
	Short: "Create a new epic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		description, _ := cmd.Flags().GetString("description")
		owner, _ := cmd.Flags().GetString("owner")
		estimate, _ := cmd.Flags().GetFloat64("estimate")

		epic, err := s.CreateEpic(&project.Epic{
			Title:       args[0],
			Description: description,
			Owner:       owner,
			Estimate:    estimate,
		})
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(epic)
		}
		fmt.Printf("%s Created epic %s: %s\n", ui.Success.Render("✓"), ui.ID.Render(epic.ID), epic.Title)
		return nil
	},
}

var createFeatureCmd = &cobra.Command{
	Use:   "feature <title>",
	Short: "Create a new feature inside an epic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		epicID, _ := cmd.Flags().GetString("epic")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetString("assignee")
		estimate, _ := cmd.Flags().GetFloat64("estimate")
		skills, _ := cmd.Flags().GetStringSlice("skills")
		blocks, _ := cmd.Flags().GetStringSlice("blocks")

		f := &project.Feature{
			Title:          args[0],
			EpicID:         strings.ToUpper(epicID),
			Description:    description,
			Priority:       project.Priority(priority),
			Assignee:       assignee,
			Estimate:       estimate,
			SkillsRequired: skills,
		}
		for _, dep := range blocks {
			f.Dependencies = append(f.Dependencies, project.Dependency{
				FeatureID: strings.ToUpper(dep),
				Type:      project.DepBlocks,
			})
		}

		feature, err := s.CreateFeature(f)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(feature)
		}
		fmt.Printf("%s Created feature %s: %s (epic %s)\n",
			ui.Success.Render("✓"), ui.ID.Render(feature.ID), feature.Title, feature.EpicID)
		return nil
	},
}

var createStoryCmd = &cobra.Command{
	Use:   "story <title>",
	Short: "Add a user story to a feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		featureID, _ := cmd.Flags().GetString("feature")
		description, _ := cmd.Flags().GetString("description")
		estimate, _ := cmd.Flags().GetFloat64("estimate")

		story, err := s.CreateStory(strings.ToUpper(featureID), project.UserStory{
			Title:       args[0],
			Description: description,
			Estimate:    estimate,
		})
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(story)
		}
		fmt.Printf("%s Created story %s: %s (feature %s)\n",
			ui.Success.Render("✓"), ui.ID.Render(story.ID), story.Title, story.FeatureID)
		return nil
	},
}

var createMilestoneCmd = &cobra.Command{
	Use:   "milestone <title>",
	Short: "Create a new milestone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		target, _ := cmd.Flags().GetString("target")
		description, _ := cmd.Flags().GetString("description")
		features, _ := cmd.Flags().GetStringSlice("features")

		var targetDate string
		if target != "" {
			targetDate, err = parseDate(target)
			if err != nil {
				return err
			}
		}

		for i := range features {
			features[i] = strings.ToUpper(features[i])
		}

		milestone, err := s.CreateMilestone(&project.Milestone{
			Title:       args[0],
			Description: description,
			TargetDate:  targetDate,
			Features:    features,
		})
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(milestone)
		}
		fmt.Printf("%s Created milestone %s: %s", ui.Success.Render("✓"), ui.ID.Render(milestone.ID), milestone.Title)
		if milestone.TargetDate != "" {
			fmt.Printf(" (target %s)", milestone.TargetDate)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	createEpicCmd.Flags().String("description", "", "Epic description")
	createEpicCmd.Flags().String("owner", "", "Epic owner")
	createEpicCmd.Flags().Float64("estimate", 0, "Estimated hours")

	createFeatureCmd.Flags().String("epic", "", "Parent epic ID (required)")
	createFeatureCmd.Flags().String("description", "", "Feature description")
	createFeatureCmd.Flags().String("priority", "medium", "Priority: critical, high, medium, low")
	createFeatureCmd.Flags().String("assignee", "", "Assignee")
	createFeatureCmd.Flags().Float64("estimate", 0, "Estimated hours")
	createFeatureCmd.Flags().StringSlice("skills", nil, "Required skills")
	createFeatureCmd.Flags().StringSlice("blocks", nil, "Feature IDs this feature is blocked by")
	_ = createFeatureCmd.MarkFlagRequired("epic")

	createStoryCmd.Flags().String("feature", "", "Parent feature ID (required)")
	createStoryCmd.Flags().String("description", "", "Story description")
	createStoryCmd.Flags().Float64("estimate", 0, "Estimated hours")
	_ = createStoryCmd.MarkFlagRequired("feature")

	createMilestoneCmd.Flags().String("target", "", "Target date (YYYY-MM-DD or natural language)")
	createMilestoneCmd.Flags().String("description", "", "Milestone description")
	createMilestoneCmd.Flags().StringSlice("features", nil, "Feature IDs tracked by this milestone")

	createCmd.AddCommand(createEpicCmd)
	createCmd.AddCommand(createFeatureCmd)
	createCmd.AddCommand(createStoryCmd)
	createCmd.AddCommand(createMilestoneCmd)
	rootCmd.AddCommand(createCmd)
}
