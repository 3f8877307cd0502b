package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"shellgate/internal/confirm"
)

// terminalConfirmer prompts a human on the terminal. Anything but an
// explicit yes is a rejection.
type terminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalConfirmer(in io.Reader, out io.Writer) *terminalConfirmer {
	return &terminalConfirmer{in: bufio.NewReader(in), out: out}
}

func (t *terminalConfirmer) Confirm(ctx context.Context, req confirm.Request) (confirm.Outcome, error) {
	fmt.Fprintf(t.out, "Command requires confirmation:\n  %s\nAllow? [y/N]: ", req.Command)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := t.in.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return confirm.Outcome{Status: confirm.StatusRejected}, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.line == "" {
			return confirm.Outcome{Status: confirm.StatusRejected}, nil
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return confirm.Outcome{Confirmed: true, Status: confirm.StatusConfirmed}, nil
		default:
			return confirm.Outcome{Status: confirm.StatusRejected}, nil
		}
	}
}
