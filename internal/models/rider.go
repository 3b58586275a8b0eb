// internal/models/rider.go
package models

type RiderStatus string

const (
	RiderStatusActive   RiderStatus = "active"
	RiderStatusInactive RiderStatus = "inactive"
	RiderStatusDeleted  RiderStatus = "deleted"
)

// Rider is a fleet unit with a wallet balance and activity status.
// WalletAmount is a signed rupee-integer; fractional paise are not modeled.
type Rider struct {
	ID           string      `json:"id"`
	FullName     string      `json:"fullName"`
	Phone        string      `json:"phone"`
	LeaderID     *string     `json:"leaderId"`
	Status       RiderStatus `json:"status"`
	WalletAmount int64       `json:"walletAmount"`
}

// BelongsTo reports whether the rider is attributed to the given leader.
// Riders with a null leader id belong to no leader but still exist globally.
func (r Rider) BelongsTo(leaderID string) bool {
	return r.LeaderID != nil && *r.LeaderID == leaderID
}
