// Package textmatch provides the lexical tokenizer and token-set helpers the
// scorer is built on. Matching is purely token-based: no stemming, no
// stopwords, no semantics.
package textmatch

import (
	"regexp"
	"strings"
)

// A token is a maximal run of ASCII letters, digits, '+', '#' or '.', so
// terms like "c++", "c#" and "node.js" survive tokenization intact.
var tokenPattern = regexp.MustCompile(`[a-z0-9+#.]+`)

// Tokenize lowercases text and returns its tokens in first-seen order with
// duplicates removed. Empty input yields an empty result.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, tok := range matches {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Set tokenizes text into a membership set.
func Set(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Overlap returns the size of the intersection of two token sets.
func Overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}
