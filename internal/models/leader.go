// internal/models/leader.go
package models

// Leader supervises a set of riders and is the subject of scoring/ranking.
type Leader struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// LeaderStats holds the derived statistics behind a leader's score.
type LeaderStats struct {
	ActiveRiders   int   `json:"activeRiders"`
	TotalRiders    int   `json:"totalRiders"`
	Wallet         int64 `json:"wallet"`
	LeadsTotal     int   `json:"leadsTotal"`
	LeadsConverted int   `json:"leadsConverted"`
	ConversionRate int   `json:"conversionRate"`
	ActivityScore  int   `json:"activityScore"`
}

// ScoredLeader is a transient view model, recomputed on every invocation
// and never persisted.
type ScoredLeader struct {
	Leader
	Score int         `json:"score"`
	Rank  int         `json:"rank,omitempty"`
	Stats LeaderStats `json:"stats"`
}
