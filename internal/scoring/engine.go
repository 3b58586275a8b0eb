// internal/scoring/engine.go

// Package scoring computes leader performance scores and rankings for the
// leaderboard and analytics views. Everything here is pure computation over
// in-memory snapshots; persistence and mutation live elsewhere.
package scoring

import (
	"math"

	"fleet-backoffice/internal/models"
)

// Score formula constants.
const (
	baseScore           = 100
	activeRiderBonus    = 10
	inactiveRiderMalus  = 5
	convertedLeadBonus  = 20
	walletUnit          = 1000
	negativeWalletScale = 2
	collectionUnitBonus = 5
)

// ScoreLeader computes a leader's score and derived stats from the full
// rider and lead collections. Filtering down to the leader's own subset is
// this function's responsibility.
func ScoreLeader(leader models.Leader, riders []models.Rider, leads []models.Lead) models.ScoredLeader {
	return ScoreLeaderWithCollections(leader, riders, leads, nil)
}

// ScoreLeaderWithCollections additionally credits collection amounts keyed
// by leader id (the variant used by the collections dashboard).
func ScoreLeaderWithCollections(leader models.Leader, riders []models.Rider, leads []models.Lead, collections map[string]int64) models.ScoredLeader {
	var (
		activeCount   int
		inactiveCount int
		totalRiders   int
		totalWallet   int64
	)

	for _, r := range riders {
		if !r.BelongsTo(leader.ID) {
			continue
		}
		totalRiders++
		totalWallet += r.WalletAmount
		switch r.Status {
		case models.RiderStatusActive:
			activeCount++
		case models.RiderStatusInactive:
			inactiveCount++
		}
	}

	var (
		leadsTotal     int
		convertedLeads int
	)
	for _, l := range leads {
		if l.CreatedBy != leader.ID {
			continue
		}
		leadsTotal++
		if l.Status == models.LeadStatusConvert {
			convertedLeads++
		}
	}

	activityScore := activeCount + convertedLeads
	if leadsTotal > 0 {
		activityScore++
	}

	score := int64(baseScore)
	score += int64(activeCount) * activeRiderBonus
	score -= int64(inactiveCount) * inactiveRiderMalus

	// Wallet bonus grows one point per thousand; a negative balance costs
	// double per thousand. floorDiv keeps the penalty rounding downward
	// for negative amounts instead of truncating toward zero.
	if totalWallet > 0 {
		score += floorDiv(totalWallet, walletUnit)
	}
	if totalWallet < 0 {
		score += floorDiv(totalWallet, walletUnit) * negativeWalletScale
	}

	score += int64(convertedLeads) * convertedLeadBonus

	if collections != nil {
		score += floorDiv(collections[leader.ID], walletUnit) * collectionUnitBonus
	}

	if score < 0 {
		score = 0
	}

	return models.ScoredLeader{
		Leader: leader,
		Score:  int(score),
		Stats: models.LeaderStats{
			ActiveRiders:   activeCount,
			TotalRiders:    totalRiders,
			Wallet:         totalWallet,
			LeadsTotal:     leadsTotal,
			LeadsConverted: convertedLeads,
			ConversionRate: ConversionRate(convertedLeads, leadsTotal),
			ActivityScore:  activityScore,
		},
	}
}

// ScoreAll scores every leader against the same snapshot.
func ScoreAll(leaders []models.Leader, riders []models.Rider, leads []models.Lead, collections map[string]int64) []models.ScoredLeader {
	scored := make([]models.ScoredLeader, 0, len(leaders))
	for _, l := range leaders {
		scored = append(scored, ScoreLeaderWithCollections(l, riders, leads, collections))
	}
	return scored
}

// ConversionRate returns round(converted/total*100) as an integer in
// [0, 100], and 0 when total is zero.
func ConversionRate(converted, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(converted) / float64(total) * 100))
}

// floorDiv divides rounding toward negative infinity, matching the source
// formula's floor semantics for negative wallet balances.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
