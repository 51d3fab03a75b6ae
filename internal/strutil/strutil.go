package strutil

import (
	"strings"
)

// LevenshteinDistance returns the case-insensitive edit distance between two
// strings, computed with two rolling rows instead of a full matrix.
func LevenshteinDistance(s1, s2 string) int {
	a := strings.ToLower(s1)
	b := strings.ToLower(s2)

	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(
				curr[j-1]+1,    // insertion
				prev[j]+1,      // deletion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// FindClosest returns the candidate closest to input and its distance.
// The returned candidate is empty when nothing is within maxDistance.
func FindClosest(input string, candidates []string, maxDistance int) (string, int) {
	if len(candidates) == 0 {
		return "", -1
	}

	closest := ""
	minDistance := maxDistance + 1

	for _, c := range candidates {
		distance := LevenshteinDistance(input, c)
		if distance < minDistance {
			minDistance = distance
			closest = c
		}
	}

	if minDistance <= maxDistance {
		return closest, minDistance
	}

	return "", minDistance
}
