// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-backoffice/internal/ai"
	"fleet-backoffice/internal/common/config"
	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/common/observability"
	"fleet-backoffice/internal/models"
	"fleet-backoffice/internal/notify"
	"fleet-backoffice/internal/search"
)

type fakeLeaderboard struct {
	entries []models.ScoredLeader
	err     error
}

func (f *fakeLeaderboard) Top(ctx context.Context, n int) ([]models.ScoredLeader, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n > 0 && n < len(f.entries) {
		return f.entries[:n], nil
	}
	return f.entries, nil
}
func (f *fakeLeaderboard) Podium(ctx context.Context) ([]models.ScoredLeader, error) {
	return f.entries, f.err
}
func (f *fakeLeaderboard) Refresh(ctx context.Context) ([]models.ScoredLeader, error) {
	return f.entries, f.err
}

type fakeServerStore struct {
	riders    []models.Rider
	leads     []models.Lead
	requests  []models.ServiceRequest
	inserted  []models.Rider
	wallets   map[string]int64
	softDel   []string
	queryErr  error
	deleteErr error
}

func (f *fakeServerStore) Riders(ctx context.Context) ([]models.Rider, error) {
	return f.riders, nil
}
func (f *fakeServerStore) Leads(ctx context.Context) ([]models.Lead, error) { return f.leads, nil }
func (f *fakeServerStore) Requests(ctx context.Context) ([]models.ServiceRequest, error) {
	return f.requests, nil
}
func (f *fakeServerStore) InsertRiders(ctx context.Context, riders []models.Rider) ([]models.Rider, error) {
	f.inserted = append(f.inserted, riders...)
	return riders, nil
}
func (f *fakeServerStore) UpdateRiderWallet(ctx context.Context, riderID string, amount int64) error {
	if f.wallets == nil {
		f.wallets = map[string]int64{}
	}
	f.wallets[riderID] = amount
	return nil
}
func (f *fakeServerStore) SoftDeleteRider(ctx context.Context, riderID string) error {
	f.softDel = append(f.softDel, riderID)
	return nil
}
func (f *fakeServerStore) DeleteLeader(ctx context.Context, leaderID string) error {
	return f.deleteErr
}
func (f *fakeServerStore) Query(ctx context.Context, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	if f.queryErr != nil {
		return nil, 0, 0, f.queryErr
	}
	return f.riders, len(f.riders), 1, nil
}

type fakeAssistant struct {
	content       string
	ok            bool
	systemContext string
}

func (f *fakeAssistant) Execute(ctx context.Context, task ai.TaskType, prompt, systemContext string) (string, bool) {
	f.systemContext = systemContext
	return f.content, f.ok
}

type fakeSearcher struct {
	result *search.SearchResult
	err    error
}

func (f *fakeSearcher) SearchRiders(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return f.result, f.err
}
func (f *fakeSearcher) SearchLeads(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return f.result, f.err
}

type fakeSender struct {
	reminders []notify.Reminder
	err       error
}

func (f *fakeSender) SendReminder(ctx context.Context, reminder notify.Reminder) (*notify.DispatchResult, error) {
	f.reminders = append(f.reminders, reminder)
	if f.err != nil {
		return nil, f.err
	}
	return &notify.DispatchResult{EmailSent: true}, nil
}

type testServer struct {
	*Server
	lb    *fakeLeaderboard
	store *fakeServerStore
	send  *fakeSender
}

func newTestServer() *testServer {
	lb := &fakeLeaderboard{entries: []models.ScoredLeader{
		{Leader: models.Leader{ID: "tl-1", FullName: "Asha"}, Score: 141, Rank: 1},
		{Leader: models.Leader{ID: "tl-2", FullName: "Rahul"}, Score: 120, Rank: 2},
	}}
	store := &fakeServerStore{
		riders: []models.Rider{
			{ID: "r-1", FullName: "Rider One", Phone: "9876543210", Status: models.RiderStatusActive, WalletAmount: 1500},
		},
	}
	send := &fakeSender{}
	cfg := &config.Config{}
	cfg.Import.MaxRows = 100

	srv := New(lb, store, &fakeAssistant{content: "generated", ok: true},
		&fakeSearcher{result: &search.SearchResult{TotalHits: 1}}, send, cfg,
		&observability.Observability{}, logger.NewNoOpLogger())
	return &testServer{Server: srv, lb: lb, store: store, send: send}
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestLeaderboard_WithLimit(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/api/leaderboard?limit=1", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Leaderboard []models.ScoredLeader `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, len(body.Leaderboard))
	assert.Equal(t, "tl-1", body.Leaderboard[0].ID)
}

func TestLeaderboard_BadLimit(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/api/leaderboard?limit=-2", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestPodium(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/api/leaderboard/podium", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "podium")
}

func TestDashboard(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/api/dashboard", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "totalRiders")
}

func TestList_UnknownQueryTypeIs404(t *testing.T) {
	ts := newTestServer()
	ts.store.queryErr = stderrors.NewUnknownQueryTypeError("nope")

	rec := doRequest(t, ts.Server, http.MethodGet, "/api/lists/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssist_Generated(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodPost, "/api/assist",
		`{"task": "analysis", "prompt": "how is the fleet doing?"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body assistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Generated)
	assert.Equal(t, "generated", body.Content)
}

func TestAssist_FallbackCopyOnFailure(t *testing.T) {
	ts := newTestServer()
	ts.Server.assistant = &fakeAssistant{ok: false}

	rec := doRequest(t, ts.Server, http.MethodPost, "/api/assist",
		`{"task": "analysis", "prompt": "p"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body assistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Generated)
	assert.Equal(t, ai.FallbackInsight, body.Content)
}

func TestAssist_MissingPrompt(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodPost, "/api/assist", `{"task": "speed"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportRiders_EndToEnd(t *testing.T) {
	ts := newTestServer()
	csvBody := "\"fullName\",\"phone\",\"leaderId\",\"status\",\"walletAmount\"\n" +
		"\"Asha Verma\",\"9876543210\",\"tl-1\",\"active\",\"1500\"\n" +
		"\"Bad Phone\",\"123\",\"\",\"\",\"\"\n"

	rec := doRequest(t, ts.Server, http.MethodPost, "/api/import/riders", csvBody)

	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
		Errors    []struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Equal(t, 1, len(report.Errors))
	assert.Equal(t, 3, report.Errors[0].Row)

	require.Equal(t, 1, len(ts.store.inserted))
	assert.Equal(t, "Asha Verma", ts.store.inserted[0].FullName)
}

func TestImportRiders_TooManyRows(t *testing.T) {
	ts := newTestServer()
	ts.cfg.Import.MaxRows = 1
	csvBody := "\"fullName\",\"phone\"\n" +
		"\"A\",\"9876543210\"\n" +
		"\"B\",\"9812345678\"\n"

	rec := doRequest(t, ts.Server, http.MethodPost, "/api/import/riders", csvBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.store.inserted)
}

func TestExportRiders_RoundTrips(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/api/export/riders", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "\"fullName\"")
	assert.Contains(t, rec.Body.String(), "\"Rider One\"")
}

func TestSearchRiders(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/api/search/riders?q=asha", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "totalHits")
}

func TestReminder_SendsComposedMessage(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodPost, "/api/reminders",
		`{"riderId": "r-1", "fullName": "Asha", "email": "a@example.com", "phone": "9876543210", "walletAmount": -1500}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, len(ts.send.reminders))
	assert.Equal(t, "r-1", ts.send.reminders[0].RiderID)
	assert.Equal(t, "generated", ts.send.reminders[0].Message)
	assert.Equal(t, "Payment reminder", ts.send.reminders[0].Subject)
}

func TestReminder_MissingRiderID(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodPost, "/api/reminders", `{"email": "a@b.c"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateWallet(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodPatch, "/api/riders/r-1/wallet", `{"walletAmount": -500}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(-500), ts.store.wallets["r-1"])
}

func TestUpdateWallet_BadBody(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodPatch, "/api/riders/r-1/wallet", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.store.wallets)
}

func TestDeleteRider_SoftDeletes(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodDelete, "/api/riders/r-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"r-1"}, ts.store.softDel)
	assert.Contains(t, rec.Body.String(), "deleted")
}

func TestDeleteLeader_BlockedByRiders(t *testing.T) {
	ts := newTestServer()
	ts.store.deleteErr = stderrors.NewDeleteBlockedError("leader", "tl-1", errors.New("riders still assigned"))
	rec := doRequest(t, ts.Server, http.MethodDelete, "/api/leaders/tl-1", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DELETE_BLOCKED")
}

func TestDashboardInsight_Generated(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodGet, "/api/dashboard/insight", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"insight":"generated"`)
	assert.Contains(t, rec.Body.String(), `"totalRiders":1`)
}

func TestAssistReply_FallsBackWhenGenerationFails(t *testing.T) {
	ts := newTestServer()
	ts.Server.assistant = &fakeAssistant{ok: false}
	rec := doRequest(t, ts.Server, http.MethodPost, "/api/assist/reply",
		`{"conversation": "rider asked about wallet dues", "question": "when is the due date?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ai.FallbackReply)
	assert.Contains(t, rec.Body.String(), `"generated":false`)
}

func TestAssistReply_MissingQuestion(t *testing.T) {
	ts := newTestServer()
	rec := doRequest(t, ts.Server, http.MethodPost, "/api/assist/reply", `{"conversation": "hello"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUIRED_FIELD_MISSING")
}

func TestAssist_PassesCallerContextUnwrapped(t *testing.T) {
	ts := newTestServer()
	assistant := &fakeAssistant{content: "x", ok: true}
	ts.Server.assistant = assistant

	rec := doRequest(t, ts.Server, http.MethodPost, "/api/assist",
		`{"task": "analysis", "prompt": "p", "context": "leader notes"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	// The orchestrator prepends the global instruction block itself.
	assert.Equal(t, "leader notes", assistant.systemContext)
}
