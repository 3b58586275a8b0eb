// internal/search/service.go

// Package search serves the rider and lead search boxes from
// Elasticsearch. The indexes are projections maintained outside this
// service; searches are read-only.
package search

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"fleet-backoffice/internal/common/config"
	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type SearchResult struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"`
}

type Service struct {
	client     *elasticsearch.Client
	riderIndex string
	leadIndex  string
	logger     logger.Logger
}

func NewService(client *elasticsearch.Client, cfg config.ElasticsearchConfig, log logger.Logger) *Service {
	return &Service{
		client:     client,
		riderIndex: cfg.RiderIndex,
		leadIndex:  cfg.LeadIndex,
		logger:     log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

func (s *Service) SearchRiders(ctx context.Context, params SearchParams) (*SearchResult, error) {
	return s.run(ctx, s.riderIndex, BuildRiderQuery(params), params)
}

func (s *Service) SearchLeads(ctx context.Context, params SearchParams) (*SearchResult, error) {
	return s.run(ctx, s.leadIndex, BuildLeadQuery(params), params)
}

func (s *Service) run(ctx context.Context, index string, queryBody map[string]interface{}, params SearchParams) (*SearchResult, error) {
	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, stderrors.NewSearchQueryFailedError(index, err)
	}

	from := params.From
	if from < 0 {
		from = 0
	}
	size := params.Size
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, stderrors.NewSearchQueryFailedError(index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Error("search request rejected", map[string]interface{}{
			"index":  index,
			"status": res.Status(),
		})
		return nil, stderrors.NewSearchQueryFailedError(index, errorFromStatus(res.Status()))
	}

	return decodeResult(res)
}

type statusError string

func (e statusError) Error() string { return string(e) }

func errorFromStatus(status string) error { return statusError(status) }

func decodeResult(res *esapi.Response) (*SearchResult, error) {
	var r struct {
		Took int64 `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			MaxScore *float64 `json:"max_score"`
			Hits     []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, stderrors.NewSearchQueryFailedError("", err)
	}

	result := &SearchResult{
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, hit := range r.Hits.Hits {
		result.Data = append(result.Data, hit.Source)
	}
	return result, nil
}
