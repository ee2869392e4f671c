package treeskema

import "github.com/agext/levenshtein"

// suggestKey returns the declared key closest to given, or "" when none is
// within edit distance 2.
func suggestKey(given string, fields []Field) string {
	best, bestDist := "", 3
	for _, f := range fields {
		if d := levenshtein.Distance(given, f.Key, nil); d < bestDist {
			best, bestDist = f.Key, d
		}
	}
	return best
}
