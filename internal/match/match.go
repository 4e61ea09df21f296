// Package match resolves free-text drug names against catalog names using
// normalized string similarity.
package match

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultThreshold tolerates single-character typos in short drug names.
const DefaultThreshold = 0.6

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9 ]+`)
	attachedUnit = regexp.MustCompile(`\b(\d+)\s*(mg|ml|mcg|iu|units?)\b`)
	unitToken    = regexp.MustCompile(`\b(mg|ml|mcg|iu|units?)\b`)
	spaces       = regexp.MustCompile(`\s+`)
)

// Normalize lowercases, trims, collapses whitespace and strips
// non-alphanumerics and dosage unit tokens ("500mg" keeps the number).
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, " ")
	s = attachedUnit.ReplaceAllString(s, "$1")
	s = unitToken.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Similarity scores two names in [0,1]. Equal normalized strings score 1;
// a substring relation (shorter side at least 3 chars) scores the length
// ratio; anything else falls back to Levenshtein distance.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)

	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}

	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= 3 && strings.Contains(longer, shorter) {
		return float64(len(shorter)) / float64(len(longer))
	}

	d := levenshtein(na, nb)
	return 1 - float64(d)/float64(len(longer))
}

// Matches reports whether the similarity of a and b reaches the threshold.
func Matches(a, b string, threshold float64) bool {
	return Similarity(a, b) >= threshold
}

// Suggestion pairs a catalog name with its similarity to the query.
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// BestMatches ranks names by similarity to query, descending, returning at
// most limit entries with a non-zero score. Used for "not found" responses.
func BestMatches(query string, names []string, limit int) []Suggestion {
	suggestions := make([]Suggestion, 0, len(names))
	for _, name := range names {
		score := Similarity(query, name)
		if score > 0 {
			suggestions = append(suggestions, Suggestion{Name: name, Score: score})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// levenshtein computes edit distance with two rolling rows.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
