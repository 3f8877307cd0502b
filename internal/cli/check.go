package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shellgate/internal/policy"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check -- <command> [args...]",
	Short: "Show how a command would be decided without executing it",
	Long: "Classifies the command, runs path restriction checks if configured,\n" +
		"and prints the policy decision as JSON.\n\n" +
		"Exit code 0 for auto-approve, 77 for auto-reject,\n" +
		"3 for require-confirmation.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	command := strings.Join(args, " ")
	verdict, report := c.gate.Evaluate(command)
	decision := policy.Decide(verdict, report.OK, c.gate.Mode())

	out, _ := json.MarshalIndent(map[string]any{
		"command":     command,
		"verdict":     verdict,
		"path_report": report,
		"decision":    decision.Kind,
		"reason":      decision.Reason,
		"auto_mode":   c.gate.Mode(),
	}, "", "  ")
	fmt.Println(string(out))

	switch decision.Kind {
	case policy.AutoReject:
		os.Exit(77)
	case policy.RequireConfirmation:
		os.Exit(3)
	}
	return nil
}
