// Package classify decides whether a shell command is dangerous,
// whitelisted, or unknown, by matching its leading token against static
// rule sets. Classification is a pure function of the command string and
// the rule sets — it never depends on execution history.
package classify

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"shellgate/internal/rules"
)

// Verdict is the classification outcome for a command.
type Verdict string

const (
	// Dangerous means the leading token is in the dangerous set.
	// Takes precedence over whitelist membership.
	Dangerous Verdict = "dangerous"
	// Whitelisted means the leading token is in the safe set.
	Whitelisted Verdict = "whitelisted"
	// NotWhitelisted means the token is in neither set, or the command
	// is empty. The fail-closed default.
	NotWhitelisted Verdict = "not_whitelisted"
)

// DefaultCacheSize bounds the verdict cache when no size is configured.
const DefaultCacheSize = 1000

// Classifier matches commands against rule sets, with an LRU cache for
// the non-restricted fast path. The rule sets are fixed per Classifier;
// swapping rules means building a new Classifier.
type Classifier struct {
	rules *rules.Rules
	cache *lru.Cache[string, Verdict]
}

// New creates a Classifier over the given rule sets with a bounded
// verdict cache. cacheSize <= 0 uses DefaultCacheSize.
func New(r *rules.Rules, cacheSize int) (*Classifier, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, Verdict](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("classify: create cache: %w", err)
	}
	return &Classifier{rules: r, cache: cache}, nil
}

// LeadingToken extracts the first whitespace-delimited token of a
// command, lowercased. Returns "" for empty or whitespace-only input.
func LeadingToken(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// Classify returns the verdict for a command without touching the cache.
// The dangerous set wins over the safe set; empty commands fail closed
// as NotWhitelisted.
func (c *Classifier) Classify(command string) Verdict {
	token := LeadingToken(command)
	if token == "" {
		return NotWhitelisted
	}
	if c.rules.IsDangerous(token) {
		return Dangerous
	}
	if c.rules.IsSafe(token) {
		return Whitelisted
	}
	return NotWhitelisted
}

// ClassifyCached returns the verdict for a command, consulting the LRU
// cache keyed by the exact command string. Must not be used when
// restricted-mode path checks apply: a cached verdict does not encode
// path safety.
func (c *Classifier) ClassifyCached(command string) Verdict {
	if v, ok := c.cache.Get(command); ok {
		return v
	}
	v := c.Classify(command)
	c.cache.Add(command, v)
	return v
}

// CacheLen reports the number of cached verdicts.
func (c *Classifier) CacheLen() int {
	return c.cache.Len()
}
