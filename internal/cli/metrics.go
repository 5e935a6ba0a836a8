package cli

import (
	"fmt"
	"sort"

	"github.com/namastexlabs/genie/internal/observability"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display metrics aggregated from the event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}

		sinceFlag, _ := cmd.Flags().GetString("since")
		since, err := observability.ParseWindow(sinceFlag)
		if err != nil {
			return err
		}

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		fmt.Printf("Metrics since %s:\n", since.Format("2006-01-02 15:04 UTC"))
		fmt.Printf("  %-20s %d\n", "Events", m.EventCount)
		fmt.Printf("  %-20s %d\n", "Wishes created", m.WishesCreated)
		fmt.Printf("  %-20s %d\n", "Wishes completed", m.WishesCompleted)
		fmt.Printf("  %-20s %d\n", "Cards appended", m.CardsAppended)
		fmt.Printf("  %-20s %d\n", "Cards completed", m.CardsCompleted)
		fmt.Printf("  %-20s %d\n", "Documents written", m.DocsWritten)
		if m.MalformedCards > 0 {
			fmt.Printf("  %-20s %d\n", "Malformed cards", m.MalformedCards)
		}

		if len(m.StageMoves) > 0 {
			fmt.Println("\nStage moves:")
			stages := make([]string, 0, len(m.StageMoves))
			for stage := range m.StageMoves {
				stages = append(stages, stage)
			}
			sort.Strings(stages)
			for _, stage := range stages {
				fmt.Printf("  %-20s %d\n", stage, m.StageMoves[stage])
			}
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().String("since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
