// Package similarity scores how alike two product names are.
package similarity

import "strings"

// Levenshtein scores strings by normalized edit distance.
type Levenshtein struct{}

// Score implements the unifier's scorer contract.
func (Levenshtein) Score(a, b string) float64 {
	return Similarity(a, b)
}

// Similarity returns 1 - distance/maxLen over the lower-cased inputs, in
// the range [0, 1]. Either input being empty yields 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}

	return 1 - float64(Distance(ra, rb))/float64(longest)
}

// Distance is the classic insert/delete/substitute edit distance.
func Distance(a, b []rune) int {
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
