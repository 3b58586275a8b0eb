// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeLeadersList    QueryType = "leaders_list"
	QueryTypeRidersList     QueryType = "riders_list"
	QueryTypeRidersByLeader QueryType = "riders_by_leader"
	QueryTypeLeadsList      QueryType = "leads_list"
	QueryTypeRequestsList   QueryType = "requests_list"
)
