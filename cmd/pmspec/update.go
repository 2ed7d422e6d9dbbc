package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/project"
	"github.com/pmspec/pmspec/internal/store"
	"github.com/pmspec/pmspec/internal/ui"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an epic, feature or milestone",
	Long: `Update an entity by ID. Only the fields given as flags change;
everything else is left as-is. Examples:

  pmspec update FEAT-003 --status in-progress --assignee alice
  pmspec update EPIC-001 --status completed
  pmspec update MILE-002 --target "next friday"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		id := strings.ToUpper(args[0])
		switch {
		case strings.HasPrefix(id, project.PrefixEpic+"-"):
			return updateEpic(cmd, s, id)
		case strings.HasPrefix(id, project.PrefixFeature+"-"):
			return updateFeature(cmd, s, id)
		case strings.HasPrefix(id, project.PrefixMilestone+"-"):
			return updateMilestone(cmd, s, id)
		default:
			return fmt.Errorf("unrecognized ID %q (expected EPIC-, FEAT- or MILE- prefix)", args[0])
		}
	},
}

func updateEpic(cmd *cobra.Command, s *store.Store, id string) error {
	var patch store.EpicPatch
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		patch.Title = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		patch.Description = &v
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		status := project.EpicStatus(v)
		patch.Status = &status
	}
	if cmd.Flags().Changed("owner") {
		v, _ := cmd.Flags().GetString("owner")
		patch.Owner = &v
	}
	if cmd.Flags().Changed("estimate") {
		v, _ := cmd.Flags().GetFloat64("estimate")
		patch.Estimate = &v
	}
	if cmd.Flags().Changed("actual") {
		v, _ := cmd.Flags().GetFloat64("actual")
		patch.Actual = &v
	}

	epic, err := s.UpdateEpic(id, patch)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(epic)
	}
	fmt.Printf("%s Updated epic %s\n", ui.Success.Render("✓"), ui.ID.Render(epic.ID))
	return nil
}

func updateFeature(cmd *cobra.Command, s *store.Store, id string) error {
	var patch store.FeaturePatch
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		patch.Title = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		patch.Description = &v
	}
	if cmd.Flags().Changed("epic") {
		v, _ := cmd.Flags().GetString("epic")
		epicID := strings.ToUpper(v)
		patch.EpicID = &epicID
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		status := project.FeatureStatus(v)
		patch.Status = &status
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetString("priority")
		priority := project.Priority(v)
		patch.Priority = &priority
	}
	if cmd.Flags().Changed("assignee") {
		v, _ := cmd.Flags().GetString("assignee")
		patch.Assignee = &v
	}
	if cmd.Flags().Changed("estimate") {
		v, _ := cmd.Flags().GetFloat64("estimate")
		patch.Estimate = &v
	}
	if cmd.Flags().Changed("actual") {
		v, _ := cmd.Flags().GetFloat64("actual")
		patch.Actual = &v
	}
	if cmd.Flags().Changed("skills") {
		v, _ := cmd.Flags().GetStringSlice("skills")
		patch.SkillsRequired = &v
	}
	if cmd.Flags().Changed("blocks") {
		v, _ := cmd.Flags().GetStringSlice("blocks")
		deps := make([]project.Dependency, 0, len(v))
		for _, dep := range v {
			deps = append(deps, project.Dependency{
				FeatureID: strings.ToUpper(dep),
				Type:      project.DepBlocks,
			})
		}
		patch.Dependencies = &deps
	}

	feature, err := s.UpdateFeature(id, patch)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(feature)
	}
	fmt.Printf("%s Updated feature %s\n", ui.Success.Render("✓"), ui.ID.Render(feature.ID))
	return nil
}

func updateMilestone(cmd *cobra.Command, s *store.Store, id string) error {
	var patch store.MilestonePatch
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		patch.Title = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		patch.Description = &v
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		status := project.MilestoneStatus(v)
		patch.Status = &status
	}
	if cmd.Flags().Changed("target") {
		v, _ := cmd.Flags().GetString("target")
		target, err := parseDate(v)
		if err != nil {
			return err
		}
		patch.TargetDate = &target
	}
	if cmd.Flags().Changed("features") {
		v, _ := cmd.Flags().GetStringSlice("features")
		for i := range v {
			v[i] = strings.ToUpper(v[i])
		}
		patch.Features = &v
	}

	milestone, err := s.UpdateMilestone(id, patch)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(milestone)
	}
	fmt.Printf("%s Updated milestone %s\n", ui.Success.Render("✓"), ui.ID.Render(milestone.ID))
	return nil
}

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().String("description", "", "New description")
	updateCmd.Flags().String("status", "", "New status")
	updateCmd.Flags().String("owner", "", "New owner (epics)")
	updateCmd.Flags().String("epic", "", "Move feature to this epic (features)")
	updateCmd.Flags().String("priority", "", "New priority (features)")
	updateCmd.Flags().String("assignee", "", "New assignee (features)")
	updateCmd.Flags().Float64("estimate", 0, "New estimated hours")
	updateCmd.Flags().Float64("actual", 0, "New actual hours")
	updateCmd.Flags().StringSlice("skills", nil, "New required skills (features)")
	updateCmd.Flags().StringSlice("blocks", nil, "New blocking dependencies (features)")
	updateCmd.Flags().String("target", "", "New target date (milestones)")
	updateCmd.Flags().StringSlice("features", nil, "New tracked feature IDs (milestones)")

	rootCmd.AddCommand(updateCmd)
}
