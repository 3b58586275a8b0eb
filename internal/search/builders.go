// internal/search/builders.go
package search

// SearchParams carries the operator's search box plus list filters.
// Zero-valued fields are omitted from the query.
type SearchParams struct {
	Keywords string `json:"keywords"`
	Status   string `json:"status"`
	LeaderID string `json:"leaderId"`
	From     int    `json:"from"`
	Size     int    `json:"size"`
}

// BuildRiderQuery builds the rider index search body. Name matches rank
// above phone matches.
func BuildRiderQuery(params SearchParams) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if params.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  params.Keywords,
				"fields": []string{"full_name^3", "phone"},
				"type":   "best_fields",
			},
		})
	}

	if params.Status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": params.Status},
		})
	}
	if params.LeaderID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"leader_id": params.LeaderID},
		})
	}

	return wrapBool(mustClauses, filterClauses)
}

// BuildLeadQuery builds the lead index search body.
func BuildLeadQuery(params SearchParams) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if params.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  params.Keywords,
				"fields": []string{"full_name^3", "phone"},
				"type":   "best_fields",
			},
		})
	}

	if params.Status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": params.Status},
		})
	}
	if params.LeaderID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"created_by": params.LeaderID},
		})
	}

	return wrapBool(mustClauses, filterClauses)
}

func wrapBool(mustClauses, filterClauses []interface{}) map[string]interface{} {
	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}
