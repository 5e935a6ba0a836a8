package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	geniemcp "github.com/namastexlabs/genie/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the genie MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the genie MCP server on stdio",
	Long: `Start the genie MCP server on stdio transport.

The server exposes the wish store as MCP tools that orchestrating agents can
call: get_wish, list_wishes, create_wish, move_wish, read_document,
add_task_card, list_task_cards, update_task_card, resolve_reference,
get_metrics, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("wish store not initialized")
		}

		srv := geniemcp.NewServer(geniemcp.Deps{
			Store:       Store,
			Cards:       Cards,
			Transitions: Transitions,
			Resolver:    Resolver,
			MetricsCalc: MetricsCalc,
			AlertEngine: AlertEngine,
		}, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
