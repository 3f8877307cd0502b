// Package pathguard confines the filesystem footprint of shell commands
// to a configured directory subtree. Validation is a pure check over the
// command text and extracted paths; it never mutates the filesystem.
package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Result classifies a single extracted path.
type Result string

const (
	// Allowed means the path is inside the allowed directory (inclusive).
	Allowed Result = "allowed"
	// AllowedReadOnlyParent means the path lives in a strict ancestor of
	// the allowed directory and the command is read-only.
	AllowedReadOnlyParent Result = "allowed_read_only_parent"
	// Blocked means anything else: outside the allowed tree, or a
	// write-capable command targeting a parent.
	Blocked Result = "blocked"
)

// PathCheck is the outcome for one extracted path.
type PathCheck struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Result     Result `json:"result"`
	Reason     string `json:"reason"`
}

// Report aggregates the per-path results for a command. The command
// passes only if every checked path passes; zero extracted paths passes
// (such commands already cleared the blacklist/whitelist gate).
type Report struct {
	OK     bool        `json:"ok"`
	Reason string      `json:"reason"`
	Op     Op          `json:"op"`
	Checks []PathCheck `json:"checks,omitempty"`
}

// Validator checks extracted command paths against an allowed directory.
// Immutable after construction.
type Validator struct {
	allowedDir      string // normalized; "" disables checking
	workingDir      string // base for relative paths
	allowParentRead bool
}

// NewValidator creates a Validator. allowedDir and workingDir are
// normalized once here; an empty workingDir falls back to the process
// working directory.
func NewValidator(allowedDir, workingDir string, allowParentRead bool) *Validator {
	if workingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workingDir = wd
		}
	}
	v := &Validator{workingDir: workingDir, allowParentRead: allowParentRead}
	if allowedDir != "" {
		v.allowedDir = v.normalize(allowedDir)
	}
	return v
}

// ValidateCommand extracts and checks every path referenced by the
// command. Nonexistent paths under read-only commands are skipped, as a
// read of a missing file cannot leak anything.
func (v *Validator) ValidateCommand(command string) Report {
	if v.allowedDir == "" {
		return Report{OK: true, Reason: "no allowed directory configured"}
	}

	paths := ExtractPaths(command)
	if len(paths) == 0 {
		return Report{OK: true, Reason: "no paths detected in command"}
	}

	op := OperationType(command)
	report := Report{Op: op}

	for _, raw := range paths {
		check := v.CheckPath(raw, op)

		if op == OpRead {
			if _, err := os.Stat(check.Normalized); os.IsNotExist(err) {
				continue
			}
		}

		report.Checks = append(report.Checks, check)

		if check.Result == Blocked {
			report.OK = false
			report.Reason = fmt.Sprintf("path restriction violation for %q: %s", raw, check.Reason)
			return report
		}
	}

	report.OK = true
	report.Reason = "all paths allowed"
	return report
}

// CheckPath classifies a single path for the given operation class.
func (v *Validator) CheckPath(path string, op Op) PathCheck {
	norm := v.normalize(path)
	res, reason := v.checkPath(norm, op)
	return PathCheck{Raw: path, Normalized: norm, Result: res, Reason: reason}
}

// AllowedDir returns the normalized allowed directory ("" if unset).
func (v *Validator) AllowedDir() string {
	return v.allowedDir
}

// AllowParentRead reports whether reads of ancestor directories pass.
func (v *Validator) AllowParentRead() bool {
	return v.allowParentRead
}

func (v *Validator) checkPath(norm string, op Op) (Result, string) {
	if isWithin(norm, v.allowedDir) {
		return Allowed, fmt.Sprintf("path within allowed directory %s", v.allowedDir)
	}

	// A path in a strict ancestor directory of the allowed root may be
	// read but never written. Covers both listing an ancestor directory
	// itself and reading a file that lives in one.
	if op == OpRead && v.allowParentRead {
		if strictAncestor(norm, v.allowedDir) || strictAncestor(filepath.Dir(norm), v.allowedDir) {
			return AllowedReadOnlyParent, fmt.Sprintf("parent directory read allowed: %s", norm)
		}
	}

	return Blocked, fmt.Sprintf("path outside allowed directory: %s not in %s", norm, v.allowedDir)
}

// normalize makes a path absolute relative to the working directory,
// cleans it, and resolves symlinks when the target exists.
func (v *Validator) normalize(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(v.workingDir, p)
	}
	p = filepath.Clean(p)
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p
}

// isWithin reports whether p is root or inside root.
func isWithin(p, root string) bool {
	if p == root {
		return true
	}
	return strings.HasPrefix(p, withSeparator(root))
}

// strictAncestor reports whether a is a proper ancestor directory of b.
func strictAncestor(a, b string) bool {
	if a == b || a == "" {
		return false
	}
	return strings.HasPrefix(b, withSeparator(a))
}

func withSeparator(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}
