package shellgate

import (
	"time"

	"shellgate/internal/gate"
)

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	rulesPath       string
	mode            string
	restricted      bool
	allowedDir      string
	allowParentRead bool
	workingDir      string
	timeout         time.Duration
	auditPath       string
	confirmer       gate.Confirmer
}

// WithRules sets the path to a rules YAML file. Unset uses the built-in
// command sets.
func WithRules(path string) Option {
	return func(c *clientConfig) { c.rulesPath = path }
}

// WithMode sets the auto mode (manual, blacklist_reject, universal_reject,
// whitelist_accept, universal_accept).
func WithMode(mode string) Option {
	return func(c *clientConfig) { c.mode = mode }
}

// WithRestriction confines commands to the given directory, with reads
// of ancestor directories optionally allowed.
func WithRestriction(allowedDir string, allowParentRead bool) Option {
	return func(c *clientConfig) {
		c.restricted = true
		c.allowedDir = allowedDir
		c.allowParentRead = allowParentRead
	}
}

// WithWorkingDir sets the default execution directory.
func WithWorkingDir(dir string) Option {
	return func(c *clientConfig) { c.workingDir = dir }
}

// WithTimeout bounds command execution.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithAudit appends every decision to the hash-chained audit log at path.
func WithAudit(path string) Option {
	return func(c *clientConfig) { c.auditPath = path }
}

// WithConfirmer routes require_confirmation decisions through the given
// confirmer. Without one, such commands are rejected.
func WithConfirmer(confirmer gate.Confirmer) Option {
	return func(c *clientConfig) { c.confirmer = confirmer }
}
