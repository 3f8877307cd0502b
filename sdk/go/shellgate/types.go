package shellgate

import (
	"fmt"

	"shellgate/internal/gate"
)

// Result is the outcome of a gated execution.
type Result = gate.Result

// CheckResult is a dry-run evaluation of a command.
type CheckResult struct {
	Command  string `json:"command"`
	Verdict  string `json:"verdict"`
	PathOK   bool   `json:"path_ok"`
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// BlockedError is returned when the gate refuses to execute a command.
type BlockedError struct {
	Command  string
	Outcome  string
	Decision string
	Reason   string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("shellgate: command blocked (%s): %s", e.Decision, e.Reason)
}
