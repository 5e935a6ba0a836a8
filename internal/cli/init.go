package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/namastexlabs/genie/internal/storage"
	"github.com/namastexlabs/genie/pkg/models"
	"github.com/spf13/cobra"
)

const defaultGenierc = `# genie wish store configuration
wishes_dir: genie/wishes

task_id:
  pad_width: 3

defaults:
  assigned: ""
  status: DRAFT

notifications:
  enabled: false
  alerts:
    stale_threshold_days: 3
    review_threshold_days: 5
    max_backlog_size: 10
`

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a wish store",
	Long: `Initialize a new or existing directory as a genie wish store: the four
stage directories under genie/wishes/ plus a default .genierc.

Safe to run on existing stores -- files and directories that already exist
are skipped and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		var created, skipped []string

		for _, stage := range models.Stages {
			dir := filepath.Join(absPath, filepath.FromSlash(storage.DefaultWishesDir), string(stage))
			if _, err := os.Stat(dir); err == nil {
				skipped = append(skipped, dir)
				continue
			}
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("creating stage directory %s: %w", stage, err)
			}
			created = append(created, dir)
		}

		rcPath := filepath.Join(absPath, ".genierc")
		if _, err := os.Stat(rcPath); err == nil {
			skipped = append(skipped, rcPath)
		} else {
			if err := os.WriteFile(rcPath, []byte(defaultGenierc), 0o600); err != nil {
				return fmt.Errorf("writing .genierc: %w", err)
			}
			created = append(created, rcPath)
		}

		if len(created) > 0 {
			fmt.Println("Created:")
			for _, p := range created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Printf("  %s\n", rel)
			}
		}
		if len(skipped) > 0 {
			fmt.Println("Skipped (already exist):")
			for _, p := range skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Printf("  %s\n", rel)
			}
		}

		fmt.Printf("\nWish store initialized at %s\n", absPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
