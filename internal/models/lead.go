// internal/models/lead.go
package models

type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "New"
	LeadStatusConvert    LeadStatus = "Convert"
	LeadStatusNotConvert LeadStatus = "Not Convert"
)

// Lead is a prospective rider in the conversion pipeline.
type Lead struct {
	ID        string     `json:"id"`
	FullName  string     `json:"fullName"`
	Phone     string     `json:"phone"`
	CreatedBy string     `json:"createdBy"`
	Status    LeadStatus `json:"status"`
}
