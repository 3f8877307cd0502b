// Package confirm manages the asynchronous human-confirmation handshake:
// a confirmation request is pushed to the session's event stream, the
// requesting flow suspends, and a later acknowledgment (or timeout, or
// cancellation) resumes it with the outcome.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Status is the lifecycle state of a confirmation ticket.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusTimedOut  Status = "timed_out"
)

// DefaultTimeout is the confirmation window when none is configured.
const DefaultTimeout = 5 * time.Minute

var (
	// ErrPendingExists is returned when a session already has a pending
	// ticket. The earlier ticket is unaffected.
	ErrPendingExists = errors.New("confirm: session already has a pending confirmation")
	// ErrNoPending is returned for acknowledgments that match no pending
	// ticket (unknown session, or already resolved).
	ErrNoPending = errors.New("confirm: no pending confirmation for session")
)

// Request describes the command awaiting confirmation.
type Request struct {
	RequestID string
	SessionID string
	Command   string
	ToolName  string
}

// Outcome is the resolution of one confirmation exchange.
type Outcome struct {
	Confirmed bool
	Status    Status
}

// Ticket is a snapshot of an in-flight confirmation.
type Ticket struct {
	RequestID string    `json:"request_id"`
	SessionID string    `json:"session_id"`
	Command   string    `json:"command"`
	ToolName  string    `json:"tool_name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ticket struct {
	Ticket
	done     chan Outcome
	resolved bool
}

// Coordinator owns the pending tickets. At most one pending ticket per
// session; each ticket resolves exactly once.
type Coordinator struct {
	mu      sync.Mutex
	pending map[string]*ticket
	timeout time.Duration
	broker  *Broker
	logger  *slog.Logger
}

// NewCoordinator creates a Coordinator pushing requests through the
// given broker. timeout <= 0 uses DefaultTimeout.
func NewCoordinator(timeout time.Duration, broker *Broker, logger *slog.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		pending: make(map[string]*ticket),
		timeout: timeout,
		broker:  broker,
		logger:  logger,
	}
}

// Confirm creates a pending ticket, pushes a confirmation_request event,
// and blocks until an acknowledgment, the timeout, or ctx cancellation.
// Timeout resolves to a rejection outcome, not an error. Cancellation
// resolves to rejection (fail closed) and returns ctx's error.
func (c *Coordinator) Confirm(ctx context.Context, req Request) (Outcome, error) {
	c.mu.Lock()
	if _, exists := c.pending[req.SessionID]; exists {
		c.mu.Unlock()
		return Outcome{Status: StatusRejected}, ErrPendingExists
	}
	t := &ticket{
		Ticket: Ticket{
			RequestID: req.RequestID,
			SessionID: req.SessionID,
			Command:   req.Command,
			ToolName:  req.ToolName,
			Status:    StatusPending,
			CreatedAt: time.Now().UTC(),
		},
		done: make(chan Outcome, 1),
	}
	c.pending[req.SessionID] = t
	c.mu.Unlock()

	if c.broker != nil {
		c.broker.Publish(req.SessionID, Event{
			Type:      EventConfirmationRequest,
			SessionID: req.SessionID,
			RequestID: req.RequestID,
			Command:   req.Command,
			ToolName:  req.ToolName,
		})
	}
	c.logger.Info("confirmation requested",
		"session_id", req.SessionID,
		"request_id", req.RequestID,
		"command", req.Command,
	)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case out := <-t.done:
		return out, nil
	case <-timer.C:
		out := c.close(req.SessionID, t, StatusTimedOut)
		c.logger.Warn("confirmation timed out", "session_id", req.SessionID, "request_id", req.RequestID)
		return out, nil
	case <-ctx.Done():
		out := c.close(req.SessionID, t, StatusRejected)
		return out, ctx.Err()
	}
}

// Resolve applies an acknowledgment to the session's pending ticket.
// Acknowledging a session with no pending ticket, or one that already
// resolved, is a conflict: ErrNoPending, original outcome unchanged.
func (c *Coordinator) Resolve(sessionID string, confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.pending[sessionID]
	if !ok || t.resolved {
		return ErrNoPending
	}

	t.resolved = true
	if confirmed {
		t.Status = StatusConfirmed
	} else {
		t.Status = StatusRejected
	}
	delete(c.pending, sessionID)
	t.done <- Outcome{Confirmed: confirmed, Status: t.Status}
	return nil
}

// PendingTicket returns a snapshot of the session's pending ticket.
func (c *Coordinator) PendingTicket(sessionID string) (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.pending[sessionID]
	if !ok {
		return Ticket{}, false
	}
	return t.Ticket, true
}

// Pending returns snapshots of every pending ticket.
func (c *Coordinator) Pending() []Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Ticket, 0, len(c.pending))
	for _, t := range c.pending {
		out = append(out, t.Ticket)
	}
	return out
}

// Timeout returns the configured confirmation window.
func (c *Coordinator) Timeout() time.Duration {
	return c.timeout
}

// close resolves a ticket from the waiting side (timeout or cancel).
// If an acknowledgment won the race, its outcome is taken instead.
func (c *Coordinator) close(sessionID string, t *ticket, status Status) Outcome {
	c.mu.Lock()
	if t.resolved {
		c.mu.Unlock()
		return <-t.done
	}
	t.resolved = true
	t.Status = status
	delete(c.pending, sessionID)
	c.mu.Unlock()
	return Outcome{Confirmed: false, Status: status}
}
