package tracing

import "strings"

// Matches reports whether topic matches the hierarchical wildcard pattern.
// Topics and patterns are '/'-delimited token sequences. A literal pattern
// token matches exactly, '+' matches exactly one arbitrary token, and '#' is
// legal only as the final pattern token, where it matches the zero or more
// remaining topic tokens. The bare pattern "#" matches every topic, the empty
// one included.
//
// Matching is purely structural: a '$'-prefixed token is a token like any
// other. Keeping system topics out of traces is the classifier's job.
func Matches(pattern, topic string) bool {
	if pattern == "#" {
		return true
	}

	pTokens := strings.Split(pattern, "/")
	tTokens := strings.Split(topic, "/")

	for i, p := range pTokens {
		if p == "#" {
			// A '#' anywhere but the end makes the pattern invalid; an invalid
			// pattern matches nothing.
			return i == len(pTokens)-1
		}
		if i >= len(tTokens) {
			return false
		}
		if p == "+" {
			continue
		}
		if p != tTokens[i] {
			return false
		}
	}

	return len(pTokens) == len(tTokens)
}
