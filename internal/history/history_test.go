package history

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(session, command, outcome string) Record {
	return Record{
		RequestID: "req-1",
		SessionID: session,
		Command:   command,
		Verdict:   "whitelisted",
		PathOK:    true,
		Decision:  "auto_approve",
		Reason:    "leading token in whitelist",
		Outcome:   outcome,
	}
}

func TestAppendAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, cmd := range []string{"ls", "pwd", "git status"} {
		if err := s.Append(ctx, rec("s1", cmd, "executed")); err != nil {
			t.Fatalf("append %s: %v", cmd, err)
		}
	}

	got, err := s.Recent(ctx, Query{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	// Newest first.
	if got[0].Command != "git status" || got[2].Command != "ls" {
		t.Errorf("wrong order: %s ... %s", got[0].Command, got[2].Command)
	}
	if got[0].Reason != "leading token in whitelist" {
		t.Errorf("reason = %q", got[0].Reason)
	}
}

func TestRecentFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Append(ctx, rec("s1", "ls", "executed"))
	s.Append(ctx, rec("s2", "rm -rf /", "blocked"))
	s.Append(ctx, rec("s1", "cat x", "rejected"))

	bySession, err := s.Recent(ctx, Query{SessionID: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySession) != 2 {
		t.Errorf("session filter: got %d, want 2", len(bySession))
	}

	byOutcome, err := s.Recent(ctx, Query{Outcome: "blocked"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byOutcome) != 1 || byOutcome[0].Command != "rm -rf /" {
		t.Errorf("outcome filter: %+v", byOutcome)
	}
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		s.Append(ctx, rec("s1", "ls", "executed"))
	}
	got, err := s.Recent(ctx, Query{Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Errorf("got %d records, want 4", len(got))
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open with nested path: %v", err)
	}
	s.Close()
}
