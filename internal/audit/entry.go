package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimestampFormat is the wire format for entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Entry is one line in the hash-chained JSONL audit log: everything
// needed to reconstruct why a command was approved, rejected, confirmed,
// or timed out. All fields are scalars (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp string `json:"ts"`
	RequestID string `json:"request_id"`
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
	Verdict   string `json:"verdict"`
	PathOK    bool   `json:"path_ok"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason"`
	WorkDir   string `json:"work_dir,omitempty"`
	Outcome   string `json:"outcome"`
	ExitCode  int    `json:"exit_code,omitempty"`
	PrevHash  string `json:"prev_hash"`
}

// sealed returns the JSON line for this entry with the chain pointer
// applied and the timestamp defaulted to now. Incomplete entries are
// rejected before they can poison the chain.
func (e Entry) sealed(prevHash string) ([]byte, error) {
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}
	e.PrevHash = prevHash
	if err := e.check(); err != nil {
		return nil, fmt.Errorf("audit: reject entry: %w", err)
	}
	line, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("audit: marshal entry: %w", err)
	}
	return line, nil
}

// check reports whether the entry is a well-formed decision record:
// a request id tying it to a gate request, a terminal outcome, and a
// parseable timestamp.
func (e Entry) check() error {
	if e.RequestID == "" {
		return errors.New("missing request_id")
	}
	if e.Outcome == "" {
		return errors.New("missing outcome")
	}
	if _, err := time.Parse(TimestampFormat, e.Timestamp); err != nil {
		return fmt.Errorf("bad timestamp %q", e.Timestamp)
	}
	return nil
}
