// Package packet correlates log entries into packets: groups of entries that
// belong to one tracked unit of work, such as a single message or job lifecycle.
package packet

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy selects how packet ids are assigned.
type Strategy string

const (
	// StrategyCounter opens a packet on every start-pattern match and names it
	// "packet_<n>_<timestamp>", with n counted per file.
	StrategyCounter Strategy = "counter"

	// StrategyIdentifier takes the packet id from the message text and carries
	// it forward to following entries of the same file.
	StrategyIdentifier Strategy = "identifier"
)

// DefaultIDPattern extracts a job id such as "job_id=abc-123".
const DefaultIDPattern = `job_id=([a-zA-Z0-9_-]+)`

// ParseStrategy converts a configuration string into a Strategy.
// An empty string selects StrategyIdentifier.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyCounter:
		return StrategyCounter, nil
	case StrategyIdentifier, "":
		return StrategyIdentifier, nil
	default:
		return "", fmt.Errorf("unknown packet strategy %q (want %q or %q)", s, StrategyCounter, StrategyIdentifier)
	}
}

// Options configures packet tracking for one run.
type Options struct {
	Enabled      bool
	Strategy     Strategy
	StartPattern string
	EndPattern   string
	IDPattern    string // identifier strategy only; DefaultIDPattern when blank
}

// PatternError reports a correlation pattern that cannot be used.
type PatternError struct {
	Field   string // "start", "end" or "id"
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("packet tracking disabled: invalid %s pattern %q: %v", e.Field, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// CompilePattern compiles a user-supplied correlation pattern.
// Field names the pattern in the returned *PatternError.
func CompilePattern(field, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Field: field, Pattern: pattern, Err: err}
	}
	return re, nil
}

// CompileIDPattern compiles an id pattern case-insensitively and checks that
// it has a capture group to take the id from.
func CompileIDPattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultIDPattern
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &PatternError{Field: "id", Pattern: pattern, Err: err}
	}
	if re.NumSubexp() < 1 {
		return nil, &PatternError{Field: "id", Pattern: pattern, Err: fmt.Errorf("pattern has no capture group")}
	}
	return re, nil
}
