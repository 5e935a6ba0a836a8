package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate and display active alerts",
	Long: `Evaluate alert conditions against the event log: wishes with no recent
activity, wishes stuck in review, and oversized backlogs.

With --notify, triggered alerts are also sent to the configured webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized (observability may be disabled)")
		}

		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		if len(alerts) == 0 {
			fmt.Println("No active alerts.")
			return nil
		}

		for _, a := range alerts {
			fmt.Printf("[%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
		}
		fmt.Printf("\n%d alert(s)\n", len(alerts))

		notify, _ := cmd.Flags().GetBool("notify")
		if notify {
			if Notifier == nil {
				return fmt.Errorf("notifications are not configured (set notifications.webhook_url in .genierc)")
			}
			if err := Notifier.Notify(alerts); err != nil {
				return fmt.Errorf("sending notifications: %w", err)
			}
			fmt.Println("Notifications sent.")
		}
		return nil
	},
}

func init() {
	alertsCmd.Flags().Bool("notify", false, "Send triggered alerts to the configured webhook")
	rootCmd.AddCommand(alertsCmd)
}
