package cli

import (
	"fmt"
	"strings"

	"github.com/namastexlabs/genie/pkg/models"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage task cards under a wish",
	Long: `Manage the ordered collection of task cards nested under a wish.

Cards carry a dependency annotation -- [P] parallel, [S] sequential, or
[W:task-001,task-002] wait -- which genie stores and returns as advisory
metadata for an external orchestrator; nothing here schedules anything.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <wish-id> <title>",
	Short: "Append a task card to a wish",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Cards == nil {
			return fmt.Errorf("task card index not initialized")
		}

		typeFlag, _ := cmd.Flags().GetString("type")
		waitsOn, _ := cmd.Flags().GetStringSlice("waits-on")
		assigned, _ := cmd.Flags().GetString("assigned")
		criteria, _ := cmd.Flags().GetStringSlice("criteria")
		desc, _ := cmd.Flags().GetString("description")
		if assigned == "" && Cfg != nil {
			assigned = Cfg.DefaultAssigned
		}

		cardType, err := buildCardType(typeFlag, waitsOn)
		if err != nil {
			return err
		}

		taskID, err := Cards.Append(args[0], models.TaskCard{
			Title:       args[1],
			Type:        cardType,
			Assigned:    assigned,
			Description: desc,
			Acceptance:  criteria,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Added %s to %s\n", taskID, args[0])
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list <wish-id>",
	Short: "List a wish's task cards in id order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Cards == nil {
			return fmt.Errorf("task card index not initialized")
		}

		cards, err := Cards.List(args[0])
		if err != nil {
			return err
		}
		if len(cards) == 0 {
			fmt.Println("No task cards found.")
			return nil
		}
		printCardTable(cards)
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <wish-id> <task-id> <status>",
	Short: "Update a task card's status",
	Long:  `Update a task card's status. Valid statuses: pending, in_progress, done.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Cards == nil {
			return fmt.Errorf("task card index not initialized")
		}

		if err := Cards.UpdateStatus(args[0], args[1], models.CardStatus(args[2])); err != nil {
			return err
		}
		fmt.Printf("Set %s to %s\n", args[1], args[2])
		return nil
	},
}

// buildCardType combines the --type and --waits-on flags into a CardType.
// --waits-on implies the wait kind; otherwise --type accepts the short
// letter (P, S, W) or a full bracketed annotation.
func buildCardType(typeFlag string, waitsOn []string) (models.CardType, error) {
	if len(waitsOn) > 0 {
		return models.CardType{Kind: models.CardWait, WaitsOn: waitsOn}, nil
	}
	switch strings.ToUpper(typeFlag) {
	case "", "S":
		return models.CardType{Kind: models.CardSequential}, nil
	case "P":
		return models.CardType{Kind: models.CardParallel}, nil
	case "W":
		return models.CardType{}, fmt.Errorf("type W requires --waits-on with at least one task id")
	}
	return models.ParseCardType(typeFlag)
}

func init() {
	taskAddCmd.Flags().String("type", "S", "Dependency type: P (parallel), S (sequential), or a full annotation like [W:task-001]")
	taskAddCmd.Flags().StringSlice("waits-on", nil, "Task ids this card waits on (implies type W)")
	taskAddCmd.Flags().String("assigned", "", "Specialist the card is assigned to")
	taskAddCmd.Flags().String("description", "", "Free-text description")
	taskAddCmd.Flags().StringSlice("criteria", nil, "Acceptance criteria lines")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskStatusCmd)
	rootCmd.AddCommand(taskCmd)
}
