// Package fuzzy implements approximate term lookup: a BK-tree keyed by
// Levenshtein distance, grounded on original_source/src/algo/bktree.c and
// original_source/src/algo/levdist.c (the C sources this spec was
// distilled from — the "terms" field in the distilled spec.md never spells
// out the tree's internal shape, so the original is the source of truth).
package fuzzy

// Levenshtein returns the edit distance between a and b: the minimum number
// of single-rune insertions, deletions, or substitutions needed to turn a
// into b. It uses the single-row optimization of the Wagner-Fischer
// algorithm (one row plus two scalars instead of the full matrix), swapping
// its arguments so the longer string is always treated as the row driver —
// the same trick levdist.c uses to minimize the row width.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	row := make([]int, m+1)
	for j := 0; j <= m; j++ {
		row[j] = j
	}

	for i := 0; i < n; i++ {
		row[0] = i + 1
		prevAbove := i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i] == rb[j-1] {
				cost = 0
			}
			prevDiag := prevAbove
			prevAbove = row[j]
			row[j] = min3(row[j-1]+1, prevAbove+1, prevDiag+cost)
		}
	}

	return row[m]
}

func min3(x, y, z int) int {
	m := x
	if y < m {
		m = y
	}
	if z < m {
		m = z
	}
	return m
}
