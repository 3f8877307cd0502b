package confirm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testCoordinator(timeout time.Duration) (*Coordinator, *Broker) {
	b := NewBroker()
	return NewCoordinator(timeout, b, nil), b
}

func TestConfirmResolved(t *testing.T) {
	c, _ := testCoordinator(5 * time.Second)

	req := Request{RequestID: "r1", SessionID: "s1", Command: "ls", ToolName: "run_shell_command"}
	got := make(chan Outcome, 1)
	go func() {
		out, err := c.Confirm(context.Background(), req)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		got <- out
	}()

	// Wait for the ticket to appear, then acknowledge.
	waitForPending(t, c, "s1")
	if err := c.Resolve("s1", true); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	out := <-got
	if !out.Confirmed || out.Status != StatusConfirmed {
		t.Errorf("outcome = %+v, want confirmed", out)
	}
	if _, ok := c.PendingTicket("s1"); ok {
		t.Error("ticket should be removed after resolution")
	}
}

func TestConfirmRejected(t *testing.T) {
	c, _ := testCoordinator(5 * time.Second)

	got := make(chan Outcome, 1)
	go func() {
		out, _ := c.Confirm(context.Background(), Request{RequestID: "r1", SessionID: "s1", Command: "rm x"})
		got <- out
	}()

	waitForPending(t, c, "s1")
	if err := c.Resolve("s1", false); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	out := <-got
	if out.Confirmed || out.Status != StatusRejected {
		t.Errorf("outcome = %+v, want rejected", out)
	}
}

func TestSecondPendingConflicts(t *testing.T) {
	c, _ := testCoordinator(5 * time.Second)

	got := make(chan Outcome, 1)
	go func() {
		out, _ := c.Confirm(context.Background(), Request{RequestID: "r1", SessionID: "s1", Command: "first"})
		got <- out
	}()
	waitForPending(t, c, "s1")

	// Second request for the same session must conflict without touching
	// the first ticket.
	_, err := c.Confirm(context.Background(), Request{RequestID: "r2", SessionID: "s1", Command: "second"})
	if !errors.Is(err, ErrPendingExists) {
		t.Fatalf("expected ErrPendingExists, got %v", err)
	}

	ticket, ok := c.PendingTicket("s1")
	if !ok || ticket.RequestID != "r1" {
		t.Fatalf("first ticket disturbed: %+v ok=%t", ticket, ok)
	}

	if err := c.Resolve("s1", true); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out := <-got
	if !out.Confirmed {
		t.Error("first ticket resolution affected by conflicting request")
	}
}

func TestDifferentSessionsIndependent(t *testing.T) {
	c, _ := testCoordinator(5 * time.Second)

	got1 := make(chan Outcome, 1)
	got2 := make(chan Outcome, 1)
	go func() {
		out, _ := c.Confirm(context.Background(), Request{RequestID: "r1", SessionID: "s1", Command: "a"})
		got1 <- out
	}()
	go func() {
		out, _ := c.Confirm(context.Background(), Request{RequestID: "r2", SessionID: "s2", Command: "b"})
		got2 <- out
	}()

	waitForPending(t, c, "s1")
	waitForPending(t, c, "s2")

	if err := c.Resolve("s1", true); err != nil {
		t.Fatal(err)
	}
	if err := c.Resolve("s2", false); err != nil {
		t.Fatal(err)
	}

	if out := <-got1; !out.Confirmed {
		t.Error("s1 should be confirmed")
	}
	if out := <-got2; out.Confirmed {
		t.Error("s2 should be rejected")
	}
}

func TestTimeoutResolvesToRejection(t *testing.T) {
	c, _ := testCoordinator(50 * time.Millisecond)

	start := time.Now()
	out, err := c.Confirm(context.Background(), Request{RequestID: "r1", SessionID: "s1", Command: "x"})
	if err != nil {
		t.Fatalf("timeout must be a normal outcome, got error: %v", err)
	}
	if out.Confirmed || out.Status != StatusTimedOut {
		t.Errorf("outcome = %+v, want timed out rejection", out)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("caller hung past the timeout window")
	}

	// Late acknowledgment is a conflict, not a second resolution.
	if err := c.Resolve("s1", true); !errors.Is(err, ErrNoPending) {
		t.Errorf("late ack should conflict, got %v", err)
	}
}

func TestDuplicateAckConflicts(t *testing.T) {
	c, _ := testCoordinator(5 * time.Second)

	go c.Confirm(context.Background(), Request{RequestID: "r1", SessionID: "s1", Command: "x"})
	waitForPending(t, c, "s1")

	if err := c.Resolve("s1", true); err != nil {
		t.Fatalf("first ack: %v", err)
	}
	if err := c.Resolve("s1", false); !errors.Is(err, ErrNoPending) {
		t.Errorf("second ack should conflict, got %v", err)
	}
}

func TestContextCancelFailsClosed(t *testing.T) {
	c, _ := testCoordinator(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Outcome, 1)
	errs := make(chan error, 1)
	go func() {
		out, err := c.Confirm(ctx, Request{RequestID: "r1", SessionID: "s1", Command: "x"})
		got <- out
		errs <- err
	}()

	waitForPending(t, c, "s1")
	cancel()

	out := <-got
	if out.Confirmed || out.Status != StatusRejected {
		t.Errorf("cancelled ticket must reject, got %+v", out)
	}
	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, ok := c.PendingTicket("s1"); ok {
		t.Error("cancelled ticket left dangling")
	}
}

func TestConfirmPublishesEvent(t *testing.T) {
	c, b := testCoordinator(5 * time.Second)

	ch, cancel := b.Subscribe("s1")
	defer cancel()

	go c.Confirm(context.Background(), Request{
		RequestID: "r1", SessionID: "s1", Command: "ls -la", ToolName: "run_shell_command",
	})

	select {
	case ev := <-ch:
		if ev.Type != EventConfirmationRequest {
			t.Errorf("event type = %s, want %s", ev.Type, EventConfirmationRequest)
		}
		if ev.Command != "ls -la" || ev.SessionID != "s1" || ev.RequestID != "r1" {
			t.Errorf("event fields wrong: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}

	c.Resolve("s1", false)
}

func TestBrokerFanoutAndCancel(t *testing.T) {
	b := NewBroker()

	ch1, cancel1 := b.Subscribe("s1")
	ch2, cancel2 := b.Subscribe("s1")
	defer cancel2()

	b.Publish("s1", Event{Type: EventHeartbeat})
	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != EventHeartbeat {
				t.Errorf("subscriber %d: wrong event %+v", i, ev)
			}
		default:
			t.Errorf("subscriber %d: no event", i)
		}
	}

	cancel1()
	if n := b.Subscribers("s1"); n != 1 {
		t.Errorf("subscriber count = %d, want 1", n)
	}

	// Publishing to a session with no subscribers is a no-op.
	b.Publish("nobody", Event{Type: EventHeartbeat})
}

func waitForPending(t *testing.T, c *Coordinator, sessionID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := c.PendingTicket(sessionID); ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no pending ticket for %s", sessionID)
}
