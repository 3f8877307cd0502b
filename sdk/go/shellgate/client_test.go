package shellgate

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"shellgate/internal/audit"
)

func TestRunWhitelisted(t *testing.T) {
	sg, err := New(WithMode("whitelist_accept"))
	if err != nil {
		t.Fatal(err)
	}
	defer sg.Close()

	res, err := sg.Run(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(res.Exec.Stdout, "hello") {
		t.Errorf("stdout = %q", res.Exec.Stdout)
	}
}

func TestRunBlockedReturnsTypedError(t *testing.T) {
	sg, err := New(WithMode("whitelist_accept"))
	if err != nil {
		t.Fatal(err)
	}
	defer sg.Close()

	_, err = sg.Run(context.Background(), "rm -rf /")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if blocked.Outcome != "blocked" {
		t.Errorf("outcome = %q", blocked.Outcome)
	}
}

func TestRunUnknownWithoutConfirmerRejected(t *testing.T) {
	sg, err := New(WithMode("whitelist_accept"))
	if err != nil {
		t.Fatal(err)
	}
	defer sg.Close()

	_, err = sg.Run(context.Background(), "frobnicate --all")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
}

func TestCheckDoesNotExecute(t *testing.T) {
	sg, err := New(WithMode("whitelist_accept"))
	if err != nil {
		t.Fatal(err)
	}
	defer sg.Close()

	check := sg.Check("rm -rf /")
	if check.Verdict != "dangerous" || check.Decision != "auto_reject" {
		t.Errorf("check = %+v", check)
	}
}

func TestWrapGuardsToolCalls(t *testing.T) {
	sg, err := New(WithMode("whitelist_accept"))
	if err != nil {
		t.Fatal(err)
	}
	defer sg.Close()

	var calls int
	fn := sg.Wrap(func(_ context.Context, command string) (any, error) {
		calls++
		return command, nil
	})

	if _, err := fn(context.Background(), "ls"); err != nil {
		t.Fatalf("allowed command: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}

	_, err = fn(context.Background(), "rm -rf /")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if calls != 1 {
		t.Error("blocked command reached the tool")
	}
}

func TestAuditOptionWritesChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sg, err := New(WithMode("whitelist_accept"), WithAudit(path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sg.Run(context.Background(), "echo audited"); err != nil {
		t.Fatal(err)
	}
	sg.Close()

	result := audit.Verify(path)
	if !result.Valid || result.Lines != 1 {
		t.Errorf("audit chain: %+v", result)
	}
}

func TestInvalidModeRejected(t *testing.T) {
	if _, err := New(WithMode("yolo")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRestrictionOption(t *testing.T) {
	sandbox := t.TempDir()
	sg, err := New(WithMode("whitelist_accept"), WithRestriction(sandbox, true), WithWorkingDir(sandbox))
	if err != nil {
		t.Fatal(err)
	}
	defer sg.Close()

	check := sg.Check("cat /etc/hosts")
	if check.PathOK {
		t.Errorf("path outside sandbox should fail: %+v", check)
	}
}
