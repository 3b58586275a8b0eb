// internal/search/service_test.go
package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-backoffice/internal/common/config"
	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/logger"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	cfg := config.ElasticsearchConfig{RiderIndex: "riders", LeadIndex: "leads"}
	return NewService(client, cfg, logger.NewNoOpLogger())
}

func esResponse(w http.ResponseWriter, body string) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestSearchRiders_DecodesHits(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		esResponse(w, `{
			"took": 4,
			"hits": {
				"total": {"value": 2},
				"max_score": 1.5,
				"hits": [
					{"_source": {"id": "r-1", "full_name": "Asha"}},
					{"_source": {"id": "r-2", "full_name": "Rahul"}}
				]
			}
		}`)
	})

	result, err := svc.SearchRiders(context.Background(), SearchParams{Keywords: "a"})

	require.NoError(t, err)
	assert.Equal(t, "/riders/_search", gotPath)
	assert.Contains(t, gotBody, "query")
	assert.Equal(t, int64(2), result.TotalHits)
	assert.Equal(t, 1.5, result.MaxScore)
	assert.Equal(t, int64(4), result.Took)
	require.Equal(t, 2, len(result.Data))
	assert.Equal(t, "Asha", result.Data[0]["full_name"])
}

func TestSearchLeads_UsesLeadIndex(t *testing.T) {
	var gotPath string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		esResponse(w, `{"took": 1, "hits": {"total": {"value": 0}, "hits": []}}`)
	})

	result, err := svc.SearchLeads(context.Background(), SearchParams{Status: "New"})

	require.NoError(t, err)
	assert.Equal(t, "/leads/_search", gotPath)
	assert.Equal(t, int64(0), result.TotalHits)
	assert.Empty(t, result.Data)
}

func TestSearch_BackendErrorSurfaces(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	})

	_, err := svc.SearchRiders(context.Background(), SearchParams{})

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeSearchQueryFailed, stdErr.Code)
}

func TestSearch_PageSizeClamped(t *testing.T) {
	var gotSize string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotSize = r.URL.Query().Get("size")
		esResponse(w, `{"took": 1, "hits": {"total": {"value": 0}, "hits": []}}`)
	})

	_, err := svc.SearchRiders(context.Background(), SearchParams{Size: 5000})

	require.NoError(t, err)
	assert.Equal(t, "100", gotSize)
}
