// Package gate is the decision pipeline: classify the command, validate
// its paths under restriction, apply the auto-mode policy, coordinate
// human confirmation when required, and finally execute. Every request
// leaves a record in the audit log and the history store regardless of
// how it resolved.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"shellgate/internal/audit"
	"shellgate/internal/classify"
	"shellgate/internal/confirm"
	"shellgate/internal/history"
	"shellgate/internal/identity"
	"shellgate/internal/pathguard"
	"shellgate/internal/policy"
	"shellgate/internal/rules"
	"shellgate/internal/runner"
)

// Outcome is the terminal state of a gated request.
type Outcome string

const (
	// OutcomeExecuted: command ran to completion (any exit code).
	OutcomeExecuted Outcome = "executed"
	// OutcomeBlocked: policy auto-rejected, never offered for confirmation.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeRejected: a human declined the confirmation.
	OutcomeRejected Outcome = "rejected"
	// OutcomeTimedOut: the confirmation window elapsed with no answer.
	OutcomeTimedOut Outcome = "timed_out"
	// OutcomeExecTimeout: approved, but execution exceeded its window.
	OutcomeExecTimeout Outcome = "timeout"
	// OutcomeError: approved, but the command could not be launched.
	OutcomeError Outcome = "error"
)

// Confirmer suspends a request until a human answers. Implemented by
// confirm.Coordinator for the daemon and by a terminal prompt for the
// CLI.
type Confirmer interface {
	Confirm(ctx context.Context, req confirm.Request) (confirm.Outcome, error)
}

// Request is one command submitted for gating.
type Request struct {
	Command   string `json:"command"`
	SessionID string `json:"session_id"`
	ToolName  string `json:"tool_name"`
}

// Result is the full account of how a request resolved.
type Result struct {
	RequestID  string             `json:"request_id"`
	SessionID  string             `json:"session_id"`
	Command    string             `json:"command"`
	Verdict    classify.Verdict   `json:"verdict"`
	PathReport pathguard.Report   `json:"path_report"`
	Decision   policy.Decision    `json:"decision"`
	Outcome    Outcome            `json:"outcome"`
	Exec       *runner.ExecResult `json:"exec,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Options configures a Gate. Audit and History are optional; a nil
// Confirmer turns every require_confirmation decision into a rejection.
type Options struct {
	Rules           *rules.Rules
	CacheSize       int
	Mode            policy.AutoMode
	Restricted      bool
	AllowedDir      string
	AllowParentRead bool
	WorkingDir      string
	Confirmer       Confirmer
	Runner          *runner.Runner
	Audit           *audit.Log
	History         *history.Store
	Logger          *slog.Logger
}

// Gate evaluates and executes commands per the configured policy.
type Gate struct {
	mu         sync.RWMutex
	classifier *classify.Classifier
	cacheSize  int

	mode       policy.AutoMode
	restricted bool
	allowedDir string
	workingDir string
	validator  *pathguard.Validator

	confirmer Confirmer
	runner    *runner.Runner
	audit     *audit.Log
	history   *history.Store
	logger    *slog.Logger
}

// New builds a Gate from options. Rules default to the built-in sets.
func New(opts Options) (*Gate, error) {
	r := opts.Rules
	if r == nil {
		r = rules.NewDefault()
	}
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = classify.DefaultCacheSize
	}
	cls, err := classify.New(r, cacheSize)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var validator *pathguard.Validator
	if opts.Restricted {
		validator = pathguard.NewValidator(opts.AllowedDir, opts.WorkingDir, opts.AllowParentRead)
	}

	return &Gate{
		classifier: cls,
		cacheSize:  cacheSize,
		mode:       opts.Mode,
		restricted: opts.Restricted,
		allowedDir: opts.AllowedDir,
		workingDir: opts.WorkingDir,
		validator:  validator,
		confirmer:  opts.Confirmer,
		runner:     opts.Runner,
		audit:      opts.Audit,
		history:    opts.History,
		logger:     logger,
	}, nil
}

// Handle runs the full pipeline for one request. Errors are returned
// only for conditions the caller must surface distinctly: a pending
// confirmation conflict (confirm.ErrPendingExists) or context
// cancellation. Everything else, execution failures included, is a
// Result outcome.
func (g *Gate) Handle(ctx context.Context, req Request) (*Result, error) {
	res := &Result{
		RequestID: "req-" + uuid.NewString(),
		SessionID: identity.EnsureSessionID(req.SessionID),
		Command:   req.Command,
	}

	res.Verdict, res.PathReport = g.Evaluate(req.Command)
	res.Decision = policy.Decide(res.Verdict, res.PathReport.OK, g.Mode())

	g.logger.Info("gate decision",
		"request_id", res.RequestID,
		"session_id", res.SessionID,
		"command", req.Command,
		"verdict", res.Verdict,
		"path_ok", res.PathReport.OK,
		"decision", res.Decision.Kind,
	)

	switch res.Decision.Kind {
	case policy.AutoReject:
		res.Outcome = OutcomeBlocked
		g.record(ctx, res, "")
		return res, nil

	case policy.AutoApprove:
		g.execute(ctx, res)
		return res, nil

	default: // require confirmation
		if g.confirmer == nil {
			res.Outcome = OutcomeRejected
			res.Error = "no confirmer available"
			g.record(ctx, res, "")
			return res, nil
		}
		out, err := g.confirmer.Confirm(ctx, confirm.Request{
			RequestID: res.RequestID,
			SessionID: res.SessionID,
			Command:   req.Command,
			ToolName:  req.ToolName,
		})
		if err != nil {
			if out.Status == confirm.StatusRejected {
				// Fail closed on cancellation: record the rejection.
				res.Outcome = OutcomeRejected
				g.record(ctx, res, "")
			}
			return res, err
		}
		switch out.Status {
		case confirm.StatusConfirmed:
			g.execute(ctx, res)
		case confirm.StatusTimedOut:
			res.Outcome = OutcomeTimedOut
			g.record(ctx, res, "")
		default:
			res.Outcome = OutcomeRejected
			g.record(ctx, res, "")
		}
		return res, nil
	}
}

// Evaluate classifies a command and checks its paths without executing
// or recording anything. The verdict cache is bypassed while restriction
// is active: identical commands can resolve differently against the
// filesystem.
func (g *Gate) Evaluate(command string) (classify.Verdict, pathguard.Report) {
	g.mu.RLock()
	cls := g.classifier
	validator := g.validator
	restricted := g.restricted
	g.mu.RUnlock()

	var verdict classify.Verdict
	if restricted {
		verdict = cls.Classify(command)
	} else {
		verdict = cls.ClassifyCached(command)
	}

	report := pathguard.Report{OK: true, Reason: "path restriction disabled"}
	if restricted && validator != nil {
		report = validator.ValidateCommand(command)
	}
	return verdict, report
}

func (g *Gate) execute(ctx context.Context, res *Result) {
	dir := runner.ResolveWorkingDir(g.restricted, g.allowedDir, g.workingDir)

	exec, err := g.runner.Run(ctx, res.Command, dir)
	if err != nil {
		var te *runner.TimeoutError
		if errors.As(err, &te) {
			res.Outcome = OutcomeExecTimeout
		} else {
			res.Outcome = OutcomeError
		}
		res.Error = err.Error()
		g.record(ctx, res, dir)
		return
	}

	res.Outcome = OutcomeExecuted
	res.Exec = exec
	g.record(ctx, res, dir)
}

// record writes the audit entry and history row. Failures are logged,
// never propagated: a broken ledger must not change a decision already
// made.
func (g *Gate) record(ctx context.Context, res *Result, workDir string) {
	exitCode := 0
	if res.Exec != nil {
		exitCode = res.Exec.ExitCode
	}

	if g.audit != nil {
		err := g.audit.Record(audit.Entry{
			RequestID: res.RequestID,
			SessionID: res.SessionID,
			Command:   res.Command,
			Verdict:   string(res.Verdict),
			PathOK:    res.PathReport.OK,
			Decision:  string(res.Decision.Kind),
			Reason:    res.Decision.Reason,
			WorkDir:   workDir,
			Outcome:   string(res.Outcome),
			ExitCode:  exitCode,
		})
		if err != nil {
			g.logger.Error("audit record failed", "request_id", res.RequestID, "error", err)
		}
	}

	if g.history != nil {
		err := g.history.Append(ctx, history.Record{
			RequestID: res.RequestID,
			SessionID: res.SessionID,
			Command:   res.Command,
			Verdict:   string(res.Verdict),
			PathOK:    res.PathReport.OK,
			Decision:  string(res.Decision.Kind),
			Reason:    res.Decision.Reason,
			Outcome:   string(res.Outcome),
			ExitCode:  exitCode,
		})
		if err != nil {
			g.logger.Error("history append failed", "request_id", res.RequestID, "error", err)
		}
	}
}

// ReloadRules swaps in a new rule set. The verdict cache starts empty:
// stale verdicts must not survive a rule change.
func (g *Gate) ReloadRules(r *rules.Rules) error {
	cls, err := classify.New(r, g.cacheSize)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.classifier = cls
	g.mu.Unlock()
	g.logger.Info("rules reloaded")
	return nil
}

// Mode returns the active auto mode.
func (g *Gate) Mode() policy.AutoMode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mode
}

// SetMode changes the active auto mode at runtime.
func (g *Gate) SetMode(m policy.AutoMode) {
	g.mu.Lock()
	g.mode = m
	g.mu.Unlock()
	g.logger.Info("auto mode changed", "mode", m)
}

// Restriction describes the active path restriction settings.
type Restriction struct {
	Enabled         bool   `json:"enabled"`
	AllowedDir      string `json:"allowed_directory,omitempty"`
	AllowParentRead bool   `json:"allow_parent_read"`
}

// RestrictionStatus reports the active restriction settings.
func (g *Gate) RestrictionStatus() Restriction {
	g.mu.RLock()
	defer g.mu.RUnlock()
	st := Restriction{Enabled: g.restricted}
	if g.validator != nil {
		st.AllowedDir = g.validator.AllowedDir()
		st.AllowParentRead = g.validator.AllowParentRead()
	}
	return st
}
