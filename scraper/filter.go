package scraper

import (
	"sort"

	"dropwatch/models"
)

// FilterCandidates reduces raw candidates to a deduplicated, ascending list
// of in-bounds values. An empty result is a normal outcome, never an error.
func FilterCandidates(candidates []models.Candidate, bounds models.Bounds) []int {
	seen := make(map[int]bool, len(candidates))
	var values []int
	for _, c := range candidates {
		if !bounds.Contains(c.Value) {
			continue
		}
		if seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		values = append(values, c.Value)
	}

	sort.Ints(values)
	return values
}
