package ui

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the largest edit distance still reported as similar
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions caps the number of suggestions
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures FindSimilar
type FuzzyMatchOptions struct {
	MaxDistance    int
	MaxSuggestions int
	CaseSensitive  bool
}

// FindSimilar returns candidates within the edit distance of target, closest
// first; ties keep candidate order. Used for "did you mean" hints on platform
// and sample names.
//
//	FindSimilar("Andriod", []string{"Android", "iOS", "WinUI"}, nil) // ["Android"]
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	maxDistance, maxSuggestions, caseSensitive := DefaultMaxDistance, DefaultMaxSuggestions, false
	if opts != nil {
		if opts.MaxDistance > 0 {
			maxDistance = opts.MaxDistance
		}
		if opts.MaxSuggestions > 0 {
			maxSuggestions = opts.MaxSuggestions
		}
		caseSensitive = opts.CaseSensitive
	}

	type match struct {
		value    string
		distance int
	}
	var matches []match
	seen := map[string]bool{}
	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true

		a, b := target, candidate
		if !caseSensitive {
			a, b = strings.ToLower(a), strings.ToLower(b)
		}
		if d := LevenshteinDistance(a, b); d <= maxDistance {
			matches = append(matches, match{candidate, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// LevenshteinDistance counts the single-rune insertions, deletions and
// substitutions that turn s1 into s2
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// FindBestMatch returns the closest candidate, or "" when none is close enough
func FindBestMatch(target string, candidates []string, opts *FuzzyMatchOptions) string {
	if matches := FindSimilar(target, candidates, opts); len(matches) > 0 {
		return matches[0]
	}
	return ""
}
