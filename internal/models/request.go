// internal/models/request.go
package models

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusResolved RequestStatus = "Resolved"
	RequestStatusRejected RequestStatus = "Rejected"
)

// ServiceRequest is a rider-raised ticket tracked by the back office.
type ServiceRequest struct {
	ID      string        `json:"id"`
	RiderID string        `json:"riderId"`
	Subject string        `json:"subject"`
	Status  RequestStatus `json:"status"`
}
