// Package distress decides whether a transcript indicates a person in distress.
package distress

import (
	"sort"
	"strings"
)

// DefaultKeywords are the phrases treated as evidence of a person in danger.
var DefaultKeywords = []string{
	"help", "help me", "ouch", "pain", "fallen", "fall", "emergency",
	"hurt", "injured", "can't get up", "ambulance", "doctor",
}

// KeywordSet is an immutable, sorted set of lowercase phrases.
// It is safe for concurrent use once constructed.
type KeywordSet struct {
	phrases []string
}

// NewKeywordSet builds a set from the given phrases.
// Phrases are trimmed and lowercased; empty and duplicate entries are dropped.
func NewKeywordSet(phrases ...string) KeywordSet {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = normalize(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return KeywordSet{phrases: out}
}

// DefaultKeywordSet returns a set built from DefaultKeywords.
func DefaultKeywordSet() KeywordSet {
	return NewKeywordSet(DefaultKeywords...)
}

// Phrases returns a copy of the phrases in sorted order.
func (k KeywordSet) Phrases() []string {
	return append([]string(nil), k.phrases...)
}

// Len returns the number of phrases in the set.
func (k KeywordSet) Len() int {
	return len(k.phrases)
}

// contains reports whether phrase is a member of the set.
func (k KeywordSet) contains(phrase string) bool {
	phrase = normalize(strings.TrimSpace(phrase))
	i := sort.SearchStrings(k.phrases, phrase)
	return i < len(k.phrases) && k.phrases[i] == phrase
}

// apostrophes maps typographic apostrophes, which smart formatting may emit,
// onto the ASCII one used by the keywords.
var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

func normalize(s string) string {
	return apostrophes.Replace(strings.ToLower(s))
}
