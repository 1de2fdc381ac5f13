// Package utils provides shared utilities for text, math, and logging.
package utils

// Truncate returns the first maxLen runes of s, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	head := HeadRunes(s, maxLen)
	if len(head) == len(s) {
		return s
	}
	return head + "..."
}

// HeadRunes returns the first n runes of s. It never splits a multi-byte character and
// adds no marker. If n is 0 or negative, returns s unchanged.
func HeadRunes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
