package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordErrorRate(t *testing.T) {
	tests := []struct {
		name  string
		text1 string
		text2 string
		want  float64
	}{
		{name: "identical texts", text1: "the quick brown fox", text2: "the quick brown fox", want: 0.0},
		{name: "identical after case and whitespace normalization", text1: "  The Quick Brown Fox  ", text2: "the quick brown fox", want: 0.0},
		{name: "empty first text", text1: "", text2: "something", want: 1.0},
		{name: "empty second text", text1: "something", text2: "", want: 1.0},
		{name: "both empty", text1: "", text2: "", want: 1.0},
		{name: "single word substitution", text1: "the quick brown fox", text2: "the slow brown fox", want: 0.25},
		{name: "completely different single words", text1: "hello", text2: "goodbye", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WordErrorRate(tt.text1, tt.text2), 0.001)
		})
	}
}

func TestWordErrorRate_Insertion(t *testing.T) {
	// Reference "a b c" vs hypothesis "a b c d": one inserted word over 3
	// reference words.
	got := WordErrorRate("a b c", "a b c d")
	assert.InDelta(t, 1.0/3.0, got, 0.001)
}

func TestLevenshteinWords_Symmetric(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"a", "x", "c"}
	assert.Equal(t, levenshteinWords(a, b), levenshteinWords(b, a))
}
