// Package similarity scores how closely a provider title matches a catalog title.
package similarity

import (
	"strings"

	"github.com/GojiraTai/koleksiyon-takip/utils/titles"
)

// LowConfidence is the score under which a match is worth flagging.
const LowConfidence = 0.6

// Similarity returns a score between 0.0 (completely different) and 1.0
// (identical) using Levenshtein distance over folded titles.
//
// A title that is a word-aligned suffix of the other and covers most of it
// ("The Falcon and the Winter Soldier" vs "Falcon and the Winter Soldier")
// scores high.
func Similarity(s1, s2 string) float64 {
	s1 = titles.Fold(s1)
	s2 = titles.Fold(s2)

	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}

	if score := suffixContainmentScore(s1, s2); score > 0 {
		return score
	}

	r1, r2 := []rune(s1), []rune(s2)
	distance := levenshteinDistance(r1, r2)
	return 1.0 - float64(distance)/float64(max(len(r1), len(r2)))
}

func suffixContainmentScore(s1, s2 string) float64 {
	longer, shorter := s1, s2
	if len(s1) < len(s2) {
		longer, shorter = s2, s1
	}
	if !strings.HasSuffix(longer, shorter) {
		return 0
	}
	prefixLen := len(longer) - len(shorter)
	if prefixLen > 0 && longer[prefixLen-1] != ' ' {
		return 0
	}
	ratio := float64(len(shorter)) / float64(len(longer))
	if ratio < 0.6 {
		return 0
	}
	// 60% containment -> 0.96, 100% -> 1.0
	return 0.90 + ratio*0.10
}

// levenshteinDistance keeps two rows of the DP matrix.
func levenshteinDistance(r1, r2 []rune) int {
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
