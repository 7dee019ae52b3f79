package search

import (
	"sort"

	"github.com/hyperjump/jcsdl/internal/index"
)

// NormalizeScores normalizes hit scores to [0,1] by max.
func NormalizeScores(results []*index.Result) map[string]float64 {
	normalized := make(map[string]float64, len(results))
	if len(results) == 0 {
		return normalized
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

func sortByID(results []*index.Result) {
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
}
