package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sets holds the raw command rule sets as loaded from YAML.
type Sets struct {
	Dangerous []string `yaml:"dangerous"`
	Safe      []string `yaml:"safe"`
}

// Rules holds compiled lookup sets for fast leading-token matching.
// A Rules value is immutable after construction.
type Rules struct {
	dangerous map[string]struct{}
	safe      map[string]struct{}
}

// New creates Rules from raw sets. Tokens are lowercased on compile,
// matching lookups against lowercased leading tokens.
func New(s Sets) *Rules {
	r := &Rules{
		dangerous: make(map[string]struct{}, len(s.Dangerous)),
		safe:      make(map[string]struct{}, len(s.Safe)),
	}
	for _, c := range s.Dangerous {
		r.dangerous[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, c := range s.Safe {
		r.safe[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	return r
}

// NewDefault creates Rules with the built-in default sets.
func NewDefault() *Rules {
	return New(DefaultSets)
}

// Load reads rule sets from a YAML file. Falls back to defaults if the
// path is empty or the file does not exist.
func Load(path string) (*Rules, error) {
	if path == "" {
		return NewDefault(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}

	var s Sets
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("rules: parse %s: %w", path, err)
	}
	if len(s.Dangerous) == 0 {
		s.Dangerous = DefaultSets.Dangerous
	}
	if len(s.Safe) == 0 {
		s.Safe = DefaultSets.Safe
	}

	return New(s), nil
}

// IsDangerous reports whether the token is in the dangerous set.
func (r *Rules) IsDangerous(token string) bool {
	_, ok := r.dangerous[token]
	return ok
}

// IsSafe reports whether the token is in the safe set.
func (r *Rules) IsSafe(token string) bool {
	_, ok := r.safe[token]
	return ok
}
