// Package policy converts a classification verdict and a path-restriction
// outcome into a final decision under the configured auto mode. Decide is
// a pure function — the whole behavior is the truth table in its body.
package policy

import (
	"fmt"

	"shellgate/internal/classify"
)

// AutoMode governs how much human confirmation is bypassed.
type AutoMode string

const (
	// ModeManual requires human confirmation for every command.
	ModeManual AutoMode = "manual"
	// ModeBlacklistReject auto-rejects dangerous commands, everything
	// else goes to confirmation.
	ModeBlacklistReject AutoMode = "blacklist_reject"
	// ModeUniversalReject auto-rejects every command.
	ModeUniversalReject AutoMode = "universal_reject"
	// ModeWhitelistAccept auto-approves whitelisted commands with clean
	// path checks, auto-rejects dangerous ones, confirms the rest.
	ModeWhitelistAccept AutoMode = "whitelist_accept"
	// ModeUniversalAccept auto-approves everything, dangerous commands
	// included. Maximum risk, for throwaway sandboxes only.
	ModeUniversalAccept AutoMode = "universal_accept"
)

// Modes lists all valid auto modes.
var Modes = []AutoMode{
	ModeManual,
	ModeBlacklistReject,
	ModeUniversalReject,
	ModeWhitelistAccept,
	ModeUniversalAccept,
}

// ParseAutoMode validates a mode string. Empty input means manual.
func ParseAutoMode(s string) (AutoMode, error) {
	if s == "" {
		return ModeManual, nil
	}
	for _, m := range Modes {
		if AutoMode(s) == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("policy: unknown auto mode %q", s)
}

// Kind is the actionable decision class.
type Kind string

const (
	AutoApprove         Kind = "auto_approve"
	AutoReject          Kind = "auto_reject"
	RequireConfirmation Kind = "require_confirmation"
)

// Decision is the output of policy evaluation.
type Decision struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
}

// Decide maps (verdict, pathOK, mode) to a decision. pathOK is true when
// restriction is disabled or every extracted path passed. Dangerous
// verdicts are never silently approved except under universal_accept,
// and a failed path check never auto-approves except under
// universal_accept.
func Decide(verdict classify.Verdict, pathOK bool, mode AutoMode) Decision {
	switch mode {
	case ModeUniversalAccept:
		return Decision{AutoApprove, fmt.Sprintf("auto-approved: universal accept mode (%s)", verdict)}

	case ModeUniversalReject:
		return Decision{AutoReject, "auto-rejected: universal reject mode"}

	case ModeManual:
		return Decision{RequireConfirmation, "manual mode requires human confirmation"}

	case ModeBlacklistReject:
		if verdict == classify.Dangerous {
			return Decision{AutoReject, "auto-rejected: dangerous command in blacklist"}
		}
		return Decision{RequireConfirmation, "blacklist reject mode: non-blacklist commands need confirmation"}

	case ModeWhitelistAccept:
		if verdict == classify.Dangerous {
			return Decision{AutoReject, "auto-rejected: dangerous command in blacklist"}
		}
		if verdict == classify.Whitelisted && pathOK {
			return Decision{AutoApprove, "auto-approved: whitelisted command"}
		}
		if verdict == classify.Whitelisted {
			return Decision{RequireConfirmation, "whitelisted command failed path restriction check"}
		}
		return Decision{RequireConfirmation, "command not whitelisted"}

	default:
		// Unknown mode fails closed.
		return Decision{RequireConfirmation, fmt.Sprintf("unknown auto mode %q", mode)}
	}
}
