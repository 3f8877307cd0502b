package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"shellgate/internal/gate"
)

func init() {
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec -- <command> [args...]",
	Short: "Execute a command through the gate with terminal confirmation",
	Long:  "Evaluates the command against the configured rules and policy before\nexecution. Commands requiring confirmation prompt on the terminal.\nBlocked or rejected commands are not executed; exit code 77 indicates\na gate block.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(newTerminalConfirmer(os.Stdin, os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to build gate: %w", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	res, err := c.gate.Handle(ctx, gate.Request{
		Command:  strings.Join(args, " "),
		ToolName: "shellgate exec",
	})
	if err != nil {
		return err
	}

	if res.Outcome != gate.OutcomeExecuted {
		out, _ := json.MarshalIndent(map[string]any{
			"blocked":  true,
			"command":  res.Command,
			"outcome":  res.Outcome,
			"decision": res.Decision.Kind,
			"reason":   res.Decision.Reason,
		}, "", "  ")
		fmt.Fprintln(os.Stderr, string(out))
		os.Exit(77)
	}

	fmt.Print(res.Exec.Stdout)
	if res.Exec.Stderr != "" {
		fmt.Fprint(os.Stderr, res.Exec.Stderr)
	}
	if res.Exec.ExitCode != 0 {
		os.Exit(res.Exec.ExitCode)
	}
	return nil
}
