package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/graph"
	"github.com/pmspec/pmspec/internal/ui"
)

var depsCmd = &cobra.Command{
	Use:   "deps <feature-id>",
	Short: "Resolve a feature's dependency graph",
	Long: `Show a feature's direct dependencies, the full transitive closure of
features that block it, and the features it blocks in turn. Only
"blocks" edges are followed; "relates-to" edges are informational.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		id := strings.ToUpper(args[0])
		if _, err := s.GetFeature(id); err != nil {
			return err
		}
		features, err := s.ListFeatures()
		if err != nil {
			return err
		}

		resolution := graph.Resolve(id, features)

		if jsonOutput(cmd) {
			return printJSON(resolution)
		}

		fmt.Printf("%s %s\n", ui.Header.Render("Dependencies for"), ui.ID.Render(id))
		if len(resolution.Direct) == 0 {
			fmt.Println("  Direct: none")
		} else {
			fmt.Println("  Direct:")
			for _, d := range resolution.Direct {
				fmt.Printf("    %s: %s\n", d.Type, d.FeatureID)
			}
		}
		if len(resolution.Transitive) > 0 {
			fmt.Printf("  Blocked by (transitive): %s\n", strings.Join(resolution.Transitive, ", "))
		}
		if len(resolution.Dependents) > 0 {
			fmt.Printf("  Blocks: %s\n", strings.Join(resolution.Dependents, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
