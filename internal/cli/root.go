// Package cli wires the cobra command tree: the daemon, the MCP server,
// and one-shot gating and inspection commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shellgate/internal/integrity"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "shellgate",
	Short: "Safety gate for AI agent shell commands",
	Long:  "Classifies agent shell commands against whitelist and blacklist rules,\nvalidates referenced paths against a sandbox directory, and routes\nanything unrecognized to a human for confirmation before execution.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := integrity.Verify(); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(78) // EX_CONFIG
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default: ~/.shellgate/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
