// Package cli implements the genie command-line interface. Commands are
// package-level cobra vars registered in init functions; their service
// dependencies are package-level vars wired by the app package at startup.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "genie",
	Short: "Genie - file-backed wish workflow store for orchestrating agents",
	Long: `Genie tracks "wishes" -- units of work backed by directories of markdown
documents -- through a four-stage lifecycle: backlog, in_progress, review,
completed. Stateless agents share context by reading and writing documents
at conventional paths and by resolving @path references.

The store is plain files: every wish is a directory in exactly one stage
directory at a time, moved between stages by atomic rename.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("genie %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
