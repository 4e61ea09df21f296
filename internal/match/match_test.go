package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Amoxicillin   500mg ", "amoxicillin 500"},
		{"Insulin (100 units/ml)", "insulin 100"},
		{"PROPOFOL", "propofol"},
		{"Vitamin-D 1000 IU", "vitamin d 1000"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"Propofol", "Amoxicillin 500mg", "x"} {
		assert.Equal(t, 1.0, Similarity(s, s), s)
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"Propofol", "Propfol"},
		{"Amoxicillin", "Amoxycillin"},
		{"Insulin", "Paracetamol"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]))
	}
}

func TestSimilarityEmptyStrings(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("", "Propofol"))
	assert.Equal(t, 0.0, Similarity("Propofol", ""))
}

func TestSimilaritySubstring(t *testing.T) {
	// "amox" inside "amoxicillin": 4/11
	got := Similarity("Amox", "Amoxicillin")
	assert.InDelta(t, 4.0/11.0, got, 1e-9)

	// Shorter side below 3 chars falls through to edit distance.
	got = Similarity("am", "amoxicillin")
	assert.Less(t, got, 4.0/11.0+1e-9)
}

func TestMatchesTypoTolerance(t *testing.T) {
	assert.True(t, Matches("Propofol", "Propfol", 0.6))
	assert.True(t, Matches("Propofol", "propofol 200mg", 0.6))
	assert.False(t, Matches("Propofol", "Paracetamol", 0.6))
}

func TestBestMatches(t *testing.T) {
	names := []string{"Propofol 200mg", "Paracetamol 500mg", "Propranolol 40mg", "Insulin"}

	got := BestMatches("Propofol", names, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "Propofol 200mg", got[0].Name)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"propofol", "propfol", 1},
		{"", "abc", 3},
		{"abc", "abc", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
