package match

import "strings"

// QuickRatio returns a similarity ratio in [0, 1] between two strings,
// case-insensitive.
//
// The measure counts characters the two strings have in common (by
// multiset intersection of their rune counts) and normalizes by combined
// length, the same upper-bound approximation of the longest-common-
// subsequence ratio that difflib's quick_ratio computes. Identical strings
// score 1.0, strings sharing no characters score 0.0, and the measure is
// symmetric. Runs in linear time, cheap enough to call per candidate.
func QuickRatio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	if la+lb == 0 {
		return 1.0
	}

	counts := make(map[rune]int)
	for _, r := range b {
		counts[r]++
	}

	matches := 0
	for _, r := range a {
		if counts[r] > 0 {
			counts[r]--
			matches++
		}
	}

	return 2.0 * float64(matches) / float64(la+lb)
}
