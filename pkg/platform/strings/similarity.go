package strings

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Levenshtein returns the rune-level edit distance between a and b, counting
// insertions, deletions and substitutions at cost 1.
//
// Example:
//
//	Levenshtein("SMITH", "SMYTH")
//	// Returns: 1
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// BigramJaccard returns |A∩B| / |A∪B| over the case-insensitive character
// bigram sets of a and b. Strings too short to form a bigram score 1.0 when
// equal and 0.0 otherwise. The result is symmetric and lies in [0,1].
func BigramJaccard(a, b string) float64 {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	setA, setB := bigrams(a), bigrams(b)
	if len(setA) == 0 || len(setB) == 0 {
		if a == b {
			return 1.0
		}
		return 0.0
	}

	shared := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func bigrams(s string) map[string]struct{} {
	r := []rune(s)
	if len(r) < 2 {
		return nil
	}
	out := make(map[string]struct{}, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		out[string(r[i:i+2])] = struct{}{}
	}
	return out
}
