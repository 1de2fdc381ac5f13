package search

import "strings"

// WordSet is a set of lowercase words.
type WordSet map[string]struct{}

// Tokenize lowercases text and splits it on whitespace into a set of distinct words.
// Punctuation stays attached, so "cat." and "cat" are different words.
func Tokenize(text string) WordSet {
	fields := strings.Fields(strings.ToLower(text))
	set := make(WordSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Overlap returns how many distinct words a and b share.
func (a WordSet) Overlap(b WordSet) int {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for w := range small {
		if _, ok := large[w]; ok {
			n++
		}
	}
	return n
}

// Words returns the set members in no particular order.
func (a WordSet) Words() []string {
	out := make([]string, 0, len(a))
	for w := range a {
		out = append(out, w)
	}
	return out
}
