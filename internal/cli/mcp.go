package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gatemcp "shellgate/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs shellgate as an MCP (Model Context Protocol) server over stdio.\nExposes gated tools: shellgate_run, shellgate_check, shellgate_pending,\nshellgate_confirm.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(nil)
	if err != nil {
		return fmt.Errorf("failed to build MCP server: %w", err)
	}
	defer c.Close()

	srv := gatemcp.New(c.gate, c.coordinator, c.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "shellgate MCP server running on stdio")
	return srv.Run(ctx)
}
