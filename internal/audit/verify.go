package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult summarizes a chain walk: whether the ledger is intact,
// how many decisions it holds, and a tally of their outcomes.
type VerifyResult struct {
	Valid     bool           `json:"valid"`
	Lines     int            `json:"lines"`
	Outcomes  map[string]int `json:"outcomes,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorLine int            `json:"error_line,omitempty"`
}

// Verify walks a JSONL audit log and validates both the hash chain and
// the entries themselves: every line must parse as a well-formed
// decision record, the first must reference the genesis hash, and each
// subsequent line must reference the hash of its predecessor.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	outcomes := make(map[string]int)
	want := GenesisHash
	lineNum := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := append([]byte(nil), scanner.Bytes()...)

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return broken(lineNum, fmt.Sprintf("parse error: %v", err))
		}
		if err := entry.check(); err != nil {
			return broken(lineNum, fmt.Sprintf("malformed entry: %v", err))
		}
		if entry.PrevHash != want {
			if lineNum == 1 {
				return broken(1, fmt.Sprintf("first entry prev_hash is %q, expected genesis hash", entry.PrevHash))
			}
			return broken(lineNum, fmt.Sprintf("hash mismatch: expected %s, got %s", want, entry.PrevHash))
		}

		outcomes[entry.Outcome]++
		want = HashLine(line)
	}
	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	res := VerifyResult{Valid: true, Lines: lineNum}
	if lineNum > 0 {
		res.Outcomes = outcomes
	}
	return res
}

func broken(line int, msg string) VerifyResult {
	return VerifyResult{Error: msg, ErrorLine: line}
}
