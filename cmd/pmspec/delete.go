package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/project"
	"github.com/pmspec/pmspec/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an epic, feature or milestone",
	Long: `Delete an entity by ID. Deleting a feature also removes it from its
epic's feature list. Deleting an epic leaves its features in place;
'pmspec validate' reports them as dangling afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}

		id := strings.ToUpper(args[0])
		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirm(fmt.Sprintf("Delete %s?", id)) {
			fmt.Println("Aborted")
			return nil
		}

		switch {
		case strings.HasPrefix(id, project.PrefixEpic+"-"):
			err = s.DeleteEpic(id)
		case strings.HasPrefix(id, project.PrefixFeature+"-"):
			err = s.DeleteFeature(id)
		case strings.HasPrefix(id, project.PrefixMilestone+"-"):
			err = s.DeleteMilestone(id)
		default:
			return fmt.Errorf("unrecognized ID %q (expected EPIC-, FEAT- or MILE- prefix)", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s Deleted %s\n", ui.Success.Render("✓"), ui.ID.Render(id))
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
