package normalization

import "strings"

// Email lowercases and trims an email address for lookup and storage.
func Email(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Username trims surrounding whitespace but preserves case, which is part of
// the displayed handle.
func Username(input string) string {
	return strings.TrimSpace(input)
}
