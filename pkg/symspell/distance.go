package symspell

import (
	"github.com/hbollon/go-edlib"
)

// osaDistance returns the optimal string alignment distance between a and
// b (insertions, deletions, substitutions and adjacent transpositions), or
// -1 if it exceeds max.
func osaDistance(a, b []rune, max int) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	// Common prefix and suffix do not change the distance.
	for len(a) > 0 && a[len(a)-1] == b[len(b)-1] {
		a, b = a[:len(a)-1], b[:len(b)-1]
	}
	for len(a) > 0 && a[0] == b[0] {
		a, b = a[1:], b[1:]
	}
	if len(b)-len(a) > max {
		return -1
	}
	if len(a) == 0 {
		return len(b)
	}

	d := edlib.OSADamerauLevenshteinDistance(string(a), string(b))
	if d > max {
		return -1
	}
	return d
}
