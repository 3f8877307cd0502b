package pathguard

import (
	"regexp"
	"strings"
)

// pathPatterns are the best-effort matchers for filesystem paths inside
// a command line: known file extensions, absolute and home paths,
// dot-relative paths, and directory-like segments. This is not a shell
// parse; unusual quoting, globbing, or expansion can evade or falsely
// trigger a match. Known limitation, kept deliberately.
var pathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\s)([^\s]*\.(?:py|js|ts|txt|json|yaml|yml|md|sh|conf|cfg|ini|log|csv))(?:\s|$)`),
	regexp.MustCompile(`(?:^|\s)([~/][^\s]*)`),
	regexp.MustCompile(`(?:^|\s)(\.[^\s]*)`),
	regexp.MustCompile(`(?:^|\s)([a-zA-Z0-9_.-]+/[^\s]*)`),
}

// ExtractPaths returns the candidate filesystem paths referenced by a
// command, deduplicated in order of first appearance.
func ExtractPaths(command string) []string {
	var paths []string
	seen := make(map[string]struct{})

	for _, re := range pathPatterns {
		for _, m := range re.FindAllStringSubmatch(command, -1) {
			p := strings.TrimSpace(m[1])
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}

	return paths
}

// Op is the primary filesystem operation class of a command.
type Op string

const (
	OpRead    Op = "read"
	OpWrite   Op = "write"
	OpExecute Op = "execute"
)

var readCommands = map[string]struct{}{
	"cat": {}, "head": {}, "tail": {}, "less": {}, "more": {},
	"grep": {}, "find": {}, "locate": {}, "ls": {}, "dir": {},
	"pwd": {}, "stat": {}, "file": {}, "du": {}, "wc": {},
	"sort": {}, "uniq": {},
}

var writeCommands = map[string]struct{}{
	"touch": {}, "mkdir": {}, "rmdir": {}, "rm": {}, "mv": {}, "cp": {},
	"chmod": {}, "chown": {}, "echo": {}, "tee": {}, "sed": {}, "awk": {},
}

// OperationType classifies a command as read, write, or execute by its
// leading token. Unknown commands default to execute, the least
// privileged class for the parent-read rule.
func OperationType(command string) Op {
	fields := strings.Fields(strings.ToLower(command))
	if len(fields) == 0 {
		return OpExecute
	}
	if _, ok := readCommands[fields[0]]; ok {
		return OpRead
	}
	if _, ok := writeCommands[fields[0]]; ok {
		return OpWrite
	}
	return OpExecute
}
