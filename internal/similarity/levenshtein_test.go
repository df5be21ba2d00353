package similarity

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"болт", "болты", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			if got := Distance([]rune(tt.a), []rune(tt.b)); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"empty left", "", "abc", 0},
		{"empty right", "abc", "", 0},
		{"identical", "Bolt M8", "Bolt M8", 1},
		{"case insensitive", "BOLT m8", "bolt M8", 1},
		{"one edit in ten", "bolt m8x40", "bolt m8x45", 0.9},
		{"cyrillic by rune", "Болт М8", "болт м9", 1 - 1.0/7},
		{"disjoint", "abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Гайка М8", "гайка M8 оцинк."},
		{"washer", "washers"},
		{"a", "abcdef"},
		{"Shaft 20mm", "shaft 25 mm"},
	}

	for _, p := range pairs {
		if Similarity(p[0], p[1]) != Similarity(p[1], p[0]) {
			t.Errorf("Expected symmetric score for %q and %q", p[0], p[1])
		}
	}
}

func TestSimilarityOfItselfIsOne(t *testing.T) {
	for _, s := range []string{"x", "Подшипник 6204", "Bearing 6204-2RS"} {
		if got := Similarity(s, s); got != 1 {
			t.Errorf("Expected 1 for %q, got %v", s, got)
		}
	}
}

func TestLevenshteinScore(t *testing.T) {
	var l Levenshtein
	if l.Score("abc", "abd") != Similarity("abc", "abd") {
		t.Errorf("Expected Score to match Similarity")
	}
}
