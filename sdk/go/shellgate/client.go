package shellgate

import (
	"context"
	"fmt"

	"shellgate/internal/audit"
	"shellgate/internal/gate"
	"shellgate/internal/policy"
	"shellgate/internal/rules"
	"shellgate/internal/runner"
)

// Client holds the gating pipeline for in-process enforcement.
// Thread-safe for concurrent tool calls.
type Client struct {
	gate     *gate.Gate
	auditLog *audit.Log
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{mode: string(policy.ModeManual)}
	for _, o := range opts {
		o(&cfg)
	}

	mode, err := policy.ParseAutoMode(cfg.mode)
	if err != nil {
		return nil, fmt.Errorf("shellgate: %w", err)
	}

	ruleSet, err := rules.Load(cfg.rulesPath)
	if err != nil {
		return nil, fmt.Errorf("shellgate: failed to load rules: %w", err)
	}

	var auditLog *audit.Log
	if cfg.auditPath != "" {
		auditLog, err = audit.Open(cfg.auditPath)
		if err != nil {
			return nil, fmt.Errorf("shellgate: failed to open audit log: %w", err)
		}
	}

	g, err := gate.New(gate.Options{
		Rules:           ruleSet,
		Mode:            mode,
		Restricted:      cfg.restricted,
		AllowedDir:      cfg.allowedDir,
		AllowParentRead: cfg.allowParentRead,
		WorkingDir:      cfg.workingDir,
		Confirmer:       cfg.confirmer,
		Runner:          runner.New(cfg.timeout, nil),
		Audit:           auditLog,
	})
	if err != nil {
		if auditLog != nil {
			auditLog.Close()
		}
		return nil, err
	}

	return &Client{gate: g, auditLog: auditLog}, nil
}

// Run executes a command through the gate. Commands the gate refuses
// return a *BlockedError without touching the shell.
func (c *Client) Run(ctx context.Context, command string) (*Result, error) {
	res, err := c.gate.Handle(ctx, gate.Request{Command: command, ToolName: "sdk"})
	if err != nil {
		return nil, err
	}
	if res.Outcome != gate.OutcomeExecuted {
		return nil, &BlockedError{
			Command:  command,
			Outcome:  string(res.Outcome),
			Decision: string(res.Decision.Kind),
			Reason:   res.Decision.Reason,
		}
	}
	return res, nil
}

// Check evaluates a command without executing it.
func (c *Client) Check(command string) CheckResult {
	verdict, report := c.gate.Evaluate(command)
	decision := policy.Decide(verdict, report.OK, c.gate.Mode())
	return CheckResult{
		Command:  command,
		Verdict:  string(verdict),
		PathOK:   report.OK,
		Decision: string(decision.Kind),
		Reason:   decision.Reason,
	}
}

// ToolFunc is the function signature that Wrap guards. The command is
// whatever shell invocation the tool is about to make.
type ToolFunc func(ctx context.Context, command string) (any, error)

// Wrap returns a ToolFunc that consults the gate before calling fn.
// Refused commands return a *BlockedError without calling fn; approved
// commands are passed through for fn to execute itself.
func (c *Client) Wrap(fn ToolFunc) ToolFunc {
	return func(ctx context.Context, command string) (any, error) {
		check := c.Check(command)
		if check.Decision != string(policy.AutoApprove) {
			return nil, &BlockedError{
				Command:  command,
				Decision: check.Decision,
				Reason:   check.Reason,
			}
		}
		return fn(ctx, command)
	}
}

// Close releases the audit log, if configured.
func (c *Client) Close() error {
	if c.auditLog != nil {
		return c.auditLog.Close()
	}
	return nil
}
