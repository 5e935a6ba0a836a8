package cli

import (
	"fmt"
	"strings"

	"github.com/namastexlabs/genie/internal/storage"
	"github.com/namastexlabs/genie/pkg/models"
	"github.com/spf13/cobra"
)

var wishCmd = &cobra.Command{
	Use:   "wish",
	Short: "Manage wishes (create, list, show, move)",
}

var wishCreateCmd = &cobra.Command{
	Use:   "create <wish-id>",
	Short: "Create a new wish in the backlog",
	Long: `Create a new wish with the given slug id. The wish starts in the backlog
stage with a document skeleton: wish.md, analysis.md, plan.md, and an empty
tasks/ directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("wish store not initialized")
		}

		title, _ := cmd.Flags().GetString("title")
		status, _ := cmd.Flags().GetString("status")
		assigned, _ := cmd.Flags().GetString("assigned")
		if assigned == "" && Cfg != nil {
			assigned = Cfg.DefaultAssigned
		}
		if status == "" && Cfg != nil {
			status = Cfg.DefaultStatus
		}

		wish, err := Store.Create(args[0], storage.CreateWishOpts{
			Title:    title,
			Status:   status,
			Assigned: assigned,
		})
		if err != nil {
			return fmt.Errorf("creating wish: %w", err)
		}

		fmt.Printf("Created wish %s in %s\n", wish.ID, wish.Stage)
		fmt.Printf("  %s\n", wish.Path)
		return nil
	},
}

var wishListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wishes grouped by stage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("wish store not initialized")
		}

		stageFilter, _ := cmd.Flags().GetString("stage")
		if stageFilter != "" {
			wishes, err := Store.ListByStage(models.Stage(stageFilter))
			if err != nil {
				return fmt.Errorf("listing wishes: %w", err)
			}
			printStageGroup(stageFilter, wishes)
			return nil
		}

		empty := true
		for _, stage := range models.Stages {
			wishes, err := Store.ListByStage(stage)
			if err != nil {
				return fmt.Errorf("listing wishes: %w", err)
			}
			if len(wishes) == 0 {
				continue
			}
			empty = false
			printStageGroup(string(stage), wishes)
			fmt.Println()
		}
		if empty {
			fmt.Println("No wishes found.")
		}
		return nil
	},
}

var wishShowCmd = &cobra.Command{
	Use:   "show <wish-id>",
	Short: "Show a wish's details and task cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil || Cards == nil {
			return fmt.Errorf("wish store not initialized")
		}

		wish, err := Store.Find(args[0])
		if err != nil {
			return fmt.Errorf("showing wish: %w", err)
		}

		fmt.Printf("Wish:     %s\n", wish.ID)
		fmt.Printf("Title:    %s\n", wish.Title)
		fmt.Printf("Stage:    %s\n", wish.Stage)
		if wish.Status != "" {
			fmt.Printf("Status:   %s\n", wish.Status)
		}
		if wish.Assigned != "" {
			fmt.Printf("Assigned: %s\n", wish.Assigned)
		}
		fmt.Printf("Path:     %s\n", wish.Path)

		cards, err := Cards.List(wish.ID)
		if err != nil {
			return fmt.Errorf("showing wish: listing task cards: %w", err)
		}
		if len(cards) > 0 {
			fmt.Printf("\nTask cards (%d):\n", len(cards))
			printCardTable(cards)
		}
		return nil
	},
}

var wishMoveCmd = &cobra.Command{
	Use:   "move <wish-id> <stage>",
	Short: "Move a wish to another lifecycle stage",
	Long: `Move a wish to another stage. Legal moves follow the lifecycle graph:

  backlog -> in_progress -> review -> completed

plus the rework edge review -> in_progress. Any other move fails and leaves
the wish where it was.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Transitions == nil {
			return fmt.Errorf("transition engine not initialized")
		}

		wishID, stage := args[0], models.Stage(args[1])
		if err := Transitions.Move(wishID, stage); err != nil {
			return err
		}
		fmt.Printf("Moved %s to %s\n", wishID, stage)
		return nil
	},
}

// printStageGroup prints a table of wishes under a stage heading.
func printStageGroup(stage string, wishes []*models.Wish) {
	fmt.Printf("== %s (%d) ==\n", strings.ToUpper(stage), len(wishes))
	if len(wishes) == 0 {
		fmt.Println("  (empty)")
		return
	}
	fmt.Printf("  %-24s %-12s %s\n", "ID", "STATUS", "TITLE")
	fmt.Printf("  %-24s %-12s %s\n", "----", "------", "-----")
	for _, w := range wishes {
		fmt.Printf("  %-24s %-12s %s\n", w.ID, w.Status, w.Title)
	}
}

func printCardTable(cards []models.TaskCard) {
	fmt.Printf("  %-10s %-20s %-12s %s\n", "ID", "TYPE", "STATUS", "TITLE")
	for _, c := range cards {
		fmt.Printf("  %-10s %-20s %-12s %s\n", c.ID, c.Type, c.Status, c.Title)
	}
}

func init() {
	wishCreateCmd.Flags().String("title", "", "Human-readable wish title (defaults to the id)")
	wishCreateCmd.Flags().String("status", "", "Initial free-text status line (default from .genierc)")
	wishCreateCmd.Flags().String("assigned", "", "Specialist the wish is assigned to")
	wishListCmd.Flags().String("stage", "", "Filter by stage (backlog, in_progress, review, completed)")

	wishCmd.AddCommand(wishCreateCmd)
	wishCmd.AddCommand(wishListCmd)
	wishCmd.AddCommand(wishShowCmd)
	wishCmd.AddCommand(wishMoveCmd)
	rootCmd.AddCommand(wishCmd)
}
