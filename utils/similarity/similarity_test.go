package similarity

import (
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		s1       string
		s2       string
		minScore float64
		maxScore float64
	}{
		{name: "Identical", s1: "Iron Man", s2: "Iron Man", minScore: 1.0, maxScore: 1.0},
		{name: "Case and punctuation", s1: "Spider-Man: Homecoming", s2: "spider man homecoming", minScore: 1.0, maxScore: 1.0},
		{name: "Diacritics", s1: "Pokémon", s2: "Pokemon", minScore: 1.0, maxScore: 1.0},
		{name: "Ampersand", s1: "Cloak & Dagger", s2: "Cloak and Dagger", minScore: 1.0, maxScore: 1.0},
		{name: "Leading article", s1: "The Falcon and the Winter Soldier", s2: "Falcon and the Winter Soldier", minScore: 0.9, maxScore: 1.0},
		{name: "Sequel", s1: "Iron Man 2", s2: "Iron Man", minScore: 0.7, maxScore: 0.99},
		{name: "Unrelated", s1: "Loki", s2: "The Incredible Hulk", minScore: 0.0, maxScore: LowConfidence},
		{name: "Empty", s1: "", s2: "Thor", minScore: 0.0, maxScore: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Similarity(tt.s1, tt.s2)
			if score < tt.minScore || score > tt.maxScore {
				t.Errorf("Similarity(%q, %q) = %.3f, want between %.2f and %.2f", tt.s1, tt.s2, score, tt.minScore, tt.maxScore)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"thor", "", 4},
		{"kitten", "sitting", 3},
		{"loki", "loki", 0},
		{"şahin", "sahin", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
