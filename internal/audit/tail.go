package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Tail reads the last n entries of a JSONL audit log, oldest first.
// Unparseable lines are an error: a log whose tail cannot be read
// should be verified, not silently skimmed.
func Tail(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()

	// Ring buffer of the last n raw lines.
	lines := make([][]byte, 0, n)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		if n > 0 && len(lines) == n {
			lines = lines[1:]
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: scan: %w", err)
	}

	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("audit: parse tail line %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
