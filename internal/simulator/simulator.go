// Package simulator maps playground input to canned terminal output.
//
// Nothing is executed. Input is matched against an ordered rule table and
// the first matching rule produces the response text.
package simulator

import "strings"

// Kind selects how a rule pattern is compared with the trimmed input.
type Kind int

const (
	// Exact rules fire only when the input equals the pattern.
	Exact Kind = iota
	// Prefix rules fire when the input starts with the pattern. Patterns
	// carry their trailing space, so "mkdir " never matches bare "mkdir".
	Prefix
)

func (k Kind) String() string {
	if k == Prefix {
		return "prefix"
	}
	return "exact"
}

// Result is the simulated response to one input line.
type Result struct {
	Output string
	// Clear asks the caller to wipe the visible history. It is never
	// accompanied by output and is never logged.
	Clear bool
}

// Rule is one entry of the recognition table.
type Rule struct {
	Name    string
	Kind    Kind
	Pattern string
	respond func(remainder string) Result
}

// Match reports whether the rule accepts the trimmed input and returns the
// raw text following the pattern for prefix rules.
func (r Rule) Match(input string) (string, bool) {
	switch r.Kind {
	case Prefix:
		if strings.HasPrefix(input, r.Pattern) {
			return input[len(r.Pattern):], true
		}
	default:
		if input == r.Pattern {
			return "", true
		}
	}
	return "", false
}

// Rules returns a copy of the recognition table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Simulate returns the canned response for input. It is pure: the same
// input always yields the same Result.
func Simulate(input string) Result {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Result{}
	}
	for _, r := range rules {
		if remainder, ok := r.Match(trimmed); ok {
			return r.respond(remainder)
		}
	}
	return Result{Output: "Command '" + trimmed + "' not found or not simulated"}
}
