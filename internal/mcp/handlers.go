package mcp

import (
	"context"
	"errors"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"shellgate/internal/confirm"
	"shellgate/internal/gate"
	"shellgate/internal/policy"
)

// --- Input/Output types ---

// RunInput defines parameters for the shellgate_run tool.
type RunInput struct {
	Command   string `json:"command" jsonschema:"shell command to execute"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier, defaults to a shared session"`
}

// RunOutput contains the execution result or block details.
type RunOutput struct {
	RequestID string `json:"request_id"`
	Outcome   string `json:"outcome"`
	Stdout    string `json:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
	ExitCode  int    `json:"exit_code"`
	Blocked   bool   `json:"blocked,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// CheckInput defines parameters for the shellgate_check tool.
type CheckInput struct {
	Command string `json:"command" jsonschema:"shell command to evaluate"`
}

// CheckOutput contains the dry-run evaluation.
type CheckOutput struct {
	Verdict    string `json:"verdict"`
	PathOK     bool   `json:"path_ok"`
	PathReason string `json:"path_reason,omitempty"`
	Decision   string `json:"decision"`
	Reason     string `json:"reason"`
}

// PendingInput is empty — no parameters needed.
type PendingInput struct{}

// PendingOutput lists commands awaiting confirmation.
type PendingOutput struct {
	Pending []PendingItem `json:"pending"`
	Count   int           `json:"count"`
}

// PendingItem describes one pending confirmation.
type PendingItem struct {
	RequestID string `json:"request_id"`
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
	CreatedAt string `json:"created_at"`
}

// ConfirmInput defines parameters for the shellgate_confirm tool.
type ConfirmInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session whose pending command to resolve"`
	Confirmed bool   `json:"confirmed" jsonschema:"true to run the command, false to reject it"`
}

// ConfirmOutput reports the resolution.
type ConfirmOutput struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// --- Handlers ---

func (s *Server) handleRun(ctx context.Context, req *mcpsdk.CallToolRequest, input RunInput) (*mcpsdk.CallToolResult, RunOutput, error) {
	res, err := s.gate.Handle(ctx, gate.Request{
		Command:   input.Command,
		SessionID: input.SessionID,
		ToolName:  "shellgate_run",
	})
	if err != nil {
		if errors.Is(err, confirm.ErrPendingExists) {
			out := RunOutput{
				Blocked:  true,
				Decision: string(policy.RequireConfirmation),
				Reason:   "session already has a pending confirmation",
			}
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
		return nil, RunOutput{}, err
	}

	out := RunOutput{
		RequestID: res.RequestID,
		Outcome:   string(res.Outcome),
		Decision:  string(res.Decision.Kind),
		Reason:    res.Decision.Reason,
	}
	if res.Exec != nil {
		out.Stdout = res.Exec.Stdout
		out.Stderr = res.Exec.Stderr
		out.ExitCode = res.Exec.ExitCode
	}

	switch res.Outcome {
	case gate.OutcomeExecuted:
		return nil, out, nil
	default:
		out.Blocked = true
		if res.Error != "" {
			out.Reason = res.Error
		}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
}

func (s *Server) handleCheck(_ context.Context, _ *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	verdict, report := s.gate.Evaluate(input.Command)
	decision := policy.Decide(verdict, report.OK, s.gate.Mode())

	return nil, CheckOutput{
		Verdict:    string(verdict),
		PathOK:     report.OK,
		PathReason: report.Reason,
		Decision:   string(decision.Kind),
		Reason:     decision.Reason,
	}, nil
}

func (s *Server) handlePending(_ context.Context, _ *mcpsdk.CallToolRequest, _ PendingInput) (*mcpsdk.CallToolResult, PendingOutput, error) {
	out := PendingOutput{Pending: []PendingItem{}}
	if s.coordinator == nil {
		return nil, out, nil
	}
	for _, t := range s.coordinator.Pending() {
		out.Pending = append(out.Pending, PendingItem{
			RequestID: t.RequestID,
			SessionID: t.SessionID,
			Command:   t.Command,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
		})
	}
	out.Count = len(out.Pending)
	return nil, out, nil
}

func (s *Server) handleConfirm(_ context.Context, _ *mcpsdk.CallToolRequest, input ConfirmInput) (*mcpsdk.CallToolResult, ConfirmOutput, error) {
	if s.coordinator == nil {
		return nil, ConfirmOutput{}, errors.New("no confirmation coordinator configured")
	}
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = "default"
	}

	if err := s.coordinator.Resolve(sessionID, input.Confirmed); err != nil {
		out := ConfirmOutput{SessionID: sessionID, Status: "no_pending"}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}

	status := "rejected"
	if input.Confirmed {
		status = "confirmed"
	}
	s.logger.Info("confirmation resolved via mcp", "session_id", sessionID, "status", status)
	return nil, ConfirmOutput{SessionID: sessionID, Status: status}, nil
}
