package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pmspec",
	Short: "File-backed project tracking with epics, features and milestones",
	Long: `pmspec manages project plans stored as plain markdown files.

Every epic, feature and milestone is one markdown file under the data
directory (epics/, features/, milestones/). The files are the database:
edit them with any editor, diff them, commit them. pmspec keeps the
structure consistent, records every change in a changelog, and can serve
live updates to dashboards over WebSocket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Data directory (default from config: ./pmspace)")
	rootCmd.PersistentFlags().String("user", "", "User recorded in the changelog")
	rootCmd.PersistentFlags().Bool("json", false, "Output machine-readable JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
