// internal/scoring/ranking.go
package scoring

import (
	"sort"

	"fleet-backoffice/internal/models"
)

// Rank sorts scored leaders by score descending and assigns 1-based ranks.
// The sort is stable: equal scores keep their original input order. The
// input slice is not modified.
func Rank(scored []models.ScoredLeader) []models.ScoredLeader {
	ranked := make([]models.ScoredLeader, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// PodiumOrder reorders the top three ranked leaders as [2nd, 1st, 3rd] for
// the center-weighted podium layout. Missing entries are dropped, never
// null-padded: one leader yields [1st], two yield [2nd, 1st].
func PodiumOrder(ranked []models.ScoredLeader) []models.ScoredLeader {
	switch {
	case len(ranked) == 0:
		return []models.ScoredLeader{}
	case len(ranked) == 1:
		return []models.ScoredLeader{ranked[0]}
	case len(ranked) == 2:
		return []models.ScoredLeader{ranked[1], ranked[0]}
	default:
		return []models.ScoredLeader{ranked[1], ranked[0], ranked[2]}
	}
}
