package audit

import (
	"path/filepath"
	"testing"
)

func BenchmarkRecord_Single(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench.jsonl")
	al, err := Open(path)
	if err != nil {
		b.Fatal(err)
	}
	defer al.Close()

	entry := Entry{
		RequestID: "req-bench",
		SessionID: "sess-bench",
		Command:   "echo hello",
		Verdict:   "whitelisted",
		PathOK:    true,
		Decision:  "auto_approve",
		Outcome:   "executed",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		al.Record(entry)
	}
}

func BenchmarkVerify(b *testing.B) {
	path := filepath.Join(b.TempDir(), "bench-verify.jsonl")
	al, err := Open(path)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		if err := al.Record(Entry{RequestID: "req-bench", Command: "echo hello", Decision: "auto_approve", Outcome: "executed"}); err != nil {
			b.Fatal(err)
		}
	}
	al.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if r := Verify(path); !r.Valid {
			b.Fatalf("chain invalid: %s", r.Error)
		}
	}
}
