// Package shellgate provides in-process command gating for Go agent
// frameworks. It classifies shell commands against whitelist and
// blacklist rules, applies the configured auto mode, and enforces the
// decision before a command reaches the shell.
//
// Usage:
//
//	sg, err := shellgate.New(shellgate.WithMode("whitelist_accept"))
//	result, err := sg.Run(ctx, "ls -la")
//	var blocked *shellgate.BlockedError
//	if errors.As(err, &blocked) {
//	    // surface blocked.Reason to the agent
//	}
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import shellgate/sdk/go/shellgate.
package shellgate
