// Package fuzzy ranks option names by edit distance for "did you mean" hints
package fuzzy

import (
	"slices"
	"strings"
)

// Matcher ranks candidates against a mistyped input
type Matcher struct {
	maxDistance int
	minLength   int // inputs shorter than this get no suggestion
}

// NewMatcher creates a matcher accepting at most maxDistance edits
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{maxDistance: maxDistance, minLength: 2}
}

// Match is a ranked candidate
type Match struct {
	Value    string
	Distance int
	Score    float64 // 0.0 to 1.0, higher is better
}

// FindBest returns the closest candidate or "" when nothing is close enough
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches returns every candidate within range, best first.
// Exact matches and duplicate candidates are skipped.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	in := []rune(strings.ToLower(input))
	if len(in) < m.minLength {
		return nil
	}

	seen := make(map[string]bool, len(candidates))
	var matches []Match
	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true

		c := []rune(strings.ToLower(candidate))
		if slices.Equal(in, c) {
			continue
		}
		d := m.distance(in, c)
		if d > m.maxDistance {
			continue
		}
		matches = append(matches, Match{Value: candidate, Distance: d, Score: score(in, c, d)})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.Distance - b.Distance
		}
	})
	return matches
}

// score favours small edit distance, a shared prefix and similar length
func score(a, b []rune, distance int) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}

	s := 1 - float64(distance)/float64(longest)

	prefix := 0
	for prefix < min(len(a), len(b)) && a[prefix] == b[prefix] {
		prefix++
	}
	s += float64(prefix) / float64(min(len(a), len(b))) * 0.3

	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	s += (1 - float64(diff)/float64(longest)) * 0.2

	return min(s, 1)
}

// distance is the Levenshtein distance over runes, capped at maxDistance+1
func (m *Matcher) distance(a, b []rune) int {
	if d := len(a) - len(b); d > m.maxDistance || -d > m.maxDistance {
		return m.maxDistance + 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(a); j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > m.maxDistance {
			return m.maxDistance + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

// FindBest is a one-shot helper around Matcher.FindBest
func FindBest(input string, candidates []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, candidates)
}

// Suggestions returns up to limit candidates, best first
func Suggestions(input string, candidates []string, maxDistance, limit int) []string {
	matches := NewMatcher(maxDistance).FindMatches(input, candidates)
	out := make([]string, 0, min(len(matches), limit))
	for _, match := range matches[:min(len(matches), limit)] {
		out = append(out, match.Value)
	}
	return out
}
