// internal/rollup/rollup.go

// Package rollup holds the pure aggregation functions behind dashboard
// cards and tables. Every function reads its input and returns a count,
// sum, or rate; nothing here mutates a collection.
package rollup

import (
	"math"

	"fleet-backoffice/internal/models"
)

// CountRidersByStatus counts riders in the given status.
func CountRidersByStatus(riders []models.Rider, status models.RiderStatus) int {
	count := 0
	for _, r := range riders {
		if r.Status == status {
			count++
		}
	}
	return count
}

// TotalWallet sums wallet balances across all riders.
func TotalWallet(riders []models.Rider) int64 {
	var total int64
	for _, r := range riders {
		total += r.WalletAmount
	}
	return total
}

// CountZeroWallet counts riders with an exactly zero balance.
func CountZeroWallet(riders []models.Rider) int {
	count := 0
	for _, r := range riders {
		if r.WalletAmount == 0 {
			count++
		}
	}
	return count
}

// CountNegativeWallet counts riders whose balance is below zero.
func CountNegativeWallet(riders []models.Rider) int {
	count := 0
	for _, r := range riders {
		if r.WalletAmount < 0 {
			count++
		}
	}
	return count
}

// CountLeadsByStatus counts leads in the given status.
func CountLeadsByStatus(leads []models.Lead, status models.LeadStatus) int {
	count := 0
	for _, l := range leads {
		if l.Status == status {
			count++
		}
	}
	return count
}

// CountRequestsByStatus counts service requests in the given status.
func CountRequestsByStatus(requests []models.ServiceRequest, status models.RequestStatus) int {
	count := 0
	for _, r := range requests {
		if r.Status == status {
			count++
		}
	}
	return count
}

// RidersOfLeader filters riders attributed to a leader, preserving order.
func RidersOfLeader(riders []models.Rider, leaderID string) []models.Rider {
	out := make([]models.Rider, 0)
	for _, r := range riders {
		if r.BelongsTo(leaderID) {
			out = append(out, r)
		}
	}
	return out
}

// LeadsOfLeader filters leads created by a leader, preserving order.
func LeadsOfLeader(leads []models.Lead, leaderID string) []models.Lead {
	out := make([]models.Lead, 0)
	for _, l := range leads {
		if l.CreatedBy == leaderID {
			out = append(out, l)
		}
	}
	return out
}

// Rate returns round(numerator/denominator*100) as an integer, and 0 when
// the denominator is zero. Same zero-guard convention as the score engine.
func Rate(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	return int(math.Round(float64(numerator) / float64(denominator) * 100))
}

// LeadConversionRate is the conversion percentage across a lead collection.
func LeadConversionRate(leads []models.Lead) int {
	return Rate(CountLeadsByStatus(leads, models.LeadStatusConvert), len(leads))
}

// DashboardStats is the rollup snapshot behind the dashboard cards.
type DashboardStats struct {
	TotalRiders     int   `json:"totalRiders"`
	ActiveRiders    int   `json:"activeRiders"`
	InactiveRiders  int   `json:"inactiveRiders"`
	ZeroWallet      int   `json:"zeroWallet"`
	NegativeWallet  int   `json:"negativeWallet"`
	WalletTotal     int64 `json:"walletTotal"`
	TotalLeads      int   `json:"totalLeads"`
	ConvertedLeads  int   `json:"convertedLeads"`
	ConversionRate  int   `json:"conversionRate"`
	PendingRequests int   `json:"pendingRequests"`
}

// BuildDashboardStats computes every dashboard card in one pass-friendly call.
func BuildDashboardStats(riders []models.Rider, leads []models.Lead, requests []models.ServiceRequest) DashboardStats {
	return DashboardStats{
		TotalRiders:     len(riders),
		ActiveRiders:    CountRidersByStatus(riders, models.RiderStatusActive),
		InactiveRiders:  CountRidersByStatus(riders, models.RiderStatusInactive),
		ZeroWallet:      CountZeroWallet(riders),
		NegativeWallet:  CountNegativeWallet(riders),
		WalletTotal:     TotalWallet(riders),
		TotalLeads:      len(leads),
		ConvertedLeads:  CountLeadsByStatus(leads, models.LeadStatusConvert),
		ConversionRate:  LeadConversionRate(leads),
		PendingRequests: CountRequestsByStatus(requests, models.RequestStatusPending),
	}
}
