// internal/scoring/engine_test.go
package scoring

import (
	"testing"

	"fleet-backoffice/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func strPtr(s string) *string {
	return &s
}

func testLeader(id string) models.Leader {
	return models.Leader{ID: id, FullName: "Leader " + id, Email: id + "@fleet.test"}
}

func riderFor(leaderID string, status models.RiderStatus, wallet int64) models.Rider {
	return models.Rider{
		ID:           "r-" + leaderID,
		LeaderID:     strPtr(leaderID),
		Status:       status,
		WalletAmount: wallet,
	}
}

func leadFor(leaderID string, status models.LeadStatus) models.Lead {
	return models.Lead{ID: "l-" + leaderID, CreatedBy: leaderID, Status: status}
}

// ==========================
// Score Formula Tests
// ==========================

func TestScoreLeader_BaseCase(t *testing.T) {
	// A leader with no matching riders and no matching leads scores exactly 100.
	leader := testLeader("tl-1")

	result := ScoreLeader(leader, nil, nil)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 0, result.Stats.TotalRiders)
	assert.Equal(t, 0, result.Stats.LeadsTotal)
	assert.Equal(t, 0, result.Stats.ConversionRate)
	assert.Equal(t, 0, result.Stats.ActivityScore)
}

func TestScoreLeader_IgnoresOtherLeadersData(t *testing.T) {
	leader := testLeader("tl-1")
	riders := []models.Rider{
		riderFor("tl-2", models.RiderStatusActive, 5000),
		{ID: "orphan", LeaderID: nil, Status: models.RiderStatusActive, WalletAmount: 9000},
	}
	leads := []models.Lead{leadFor("tl-2", models.LeadStatusConvert)}

	result := ScoreLeader(leader, riders, leads)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 0, result.Stats.TotalRiders)
}

func TestScoreLeader_ScoreNeverNegative(t *testing.T) {
	// Every contributing term maximally negative still clamps at zero.
	leader := testLeader("tl-1")
	riders := []models.Rider{}
	for i := 0; i < 50; i++ {
		riders = append(riders, models.Rider{
			ID:           "r",
			LeaderID:     strPtr("tl-1"),
			Status:       models.RiderStatusInactive,
			WalletAmount: -100000,
		})
	}

	result := ScoreLeader(leader, riders, nil)

	assert.Equal(t, 0, result.Score)
}

func TestScoreLeader_WalletPenaltyAsymmetry(t *testing.T) {
	// +1000 wallet adds 1 point; -1000 wallet removes 2.
	plus := ScoreLeader(testLeader("tl-1"), []models.Rider{riderFor("tl-1", models.RiderStatusActive, 1000)}, nil)
	minus := ScoreLeader(testLeader("tl-1"), []models.Rider{riderFor("tl-1", models.RiderStatusActive, -1000)}, nil)
	flat := ScoreLeader(testLeader("tl-1"), []models.Rider{riderFor("tl-1", models.RiderStatusActive, 0)}, nil)

	assert.Equal(t, flat.Score+1, plus.Score)
	assert.Equal(t, flat.Score-2, minus.Score)
}

func TestScoreLeader_NegativeWalletFloorsDownward(t *testing.T) {
	// floor(-1500/1000) is -2, not -1: penalty is -4.
	leader := testLeader("tl-1")
	riders := []models.Rider{riderFor("tl-1", models.RiderStatusActive, -1500)}

	result := ScoreLeader(leader, riders, nil)

	// 100 + 10 (active) + (-2 * 2) = 106
	assert.Equal(t, 106, result.Score)
}

func TestScoreLeader_ReferenceScenario(t *testing.T) {
	// 3 active riders (wallets 500, -2000, 0), 1 inactive, 2 leads (1 converted).
	leader := testLeader("tl-1")
	riders := []models.Rider{
		riderFor("tl-1", models.RiderStatusActive, 500),
		riderFor("tl-1", models.RiderStatusActive, -2000),
		riderFor("tl-1", models.RiderStatusActive, 0),
		riderFor("tl-1", models.RiderStatusInactive, 0),
	}
	leads := []models.Lead{
		leadFor("tl-1", models.LeadStatusConvert),
		leadFor("tl-1", models.LeadStatusNew),
	}

	result := ScoreLeader(leader, riders, leads)

	assert.Equal(t, 3, result.Stats.ActiveRiders)
	assert.Equal(t, 4, result.Stats.TotalRiders)
	assert.Equal(t, int64(-1500), result.Stats.Wallet)
	// 100 + 30 - 5 + floor(-1500/1000)*2 + 20 = 141
	assert.Equal(t, 141, result.Score)
	assert.Equal(t, 50, result.Stats.ConversionRate)
	// 3 active + 1 converted + 1 (has leads)
	assert.Equal(t, 5, result.Stats.ActivityScore)
}

func TestScoreLeaderWithCollections(t *testing.T) {
	tests := []struct {
		name       string
		collection int64
		expected   int
	}{
		{name: "no collection entry", collection: 0, expected: 100},
		{name: "collection below unit", collection: 999, expected: 100},
		{name: "one unit", collection: 1000, expected: 105},
		{name: "several units", collection: 4200, expected: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collections := map[string]int64{}
			if tt.collection != 0 {
				collections["tl-1"] = tt.collection
			}

			result := ScoreLeaderWithCollections(testLeader("tl-1"), nil, nil, collections)

			assert.Equal(t, tt.expected, result.Score)
		})
	}
}

func TestConversionRate(t *testing.T) {
	tests := []struct {
		name      string
		converted int
		total     int
		expected  int
	}{
		{name: "zero leads guard", converted: 0, total: 0, expected: 0},
		{name: "half", converted: 1, total: 2, expected: 50},
		{name: "rounds up", converted: 1, total: 3, expected: 33},
		{name: "two thirds", converted: 2, total: 3, expected: 67},
		{name: "full", converted: 5, total: 5, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConversionRate(tt.converted, tt.total))
		})
	}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(1), floorDiv(1500, 1000))
	assert.Equal(t, int64(-2), floorDiv(-1500, 1000))
	assert.Equal(t, int64(-1), floorDiv(-1000, 1000))
	assert.Equal(t, int64(0), floorDiv(999, 1000))
	assert.Equal(t, int64(-1), floorDiv(-1, 1000))
}
