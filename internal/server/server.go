// internal/server/server.go

// Package server is the HTTP surface of the back office. Handlers stay
// thin: decode, call a service, encode. All error shaping goes through the
// shared error handler.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleet-backoffice/internal/ai"
	"fleet-backoffice/internal/common/config"
	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/common/observability"
	"fleet-backoffice/internal/models"
	"fleet-backoffice/internal/notify"
	"fleet-backoffice/internal/search"
)

// LeaderboardAPI serves the ranked views.
type LeaderboardAPI interface {
	Top(ctx context.Context, n int) ([]models.ScoredLeader, error)
	Podium(ctx context.Context) ([]models.ScoredLeader, error)
	Refresh(ctx context.Context) ([]models.ScoredLeader, error)
}

// StoreAPI is the slice of the persistence layer the handlers need.
type StoreAPI interface {
	Riders(ctx context.Context) ([]models.Rider, error)
	Leads(ctx context.Context) ([]models.Lead, error)
	Requests(ctx context.Context) ([]models.ServiceRequest, error)
	InsertRiders(ctx context.Context, riders []models.Rider) ([]models.Rider, error)
	UpdateRiderWallet(ctx context.Context, riderID string, amount int64) error
	SoftDeleteRider(ctx context.Context, riderID string) error
	DeleteLeader(ctx context.Context, leaderID string) error
	Query(ctx context.Context, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error)
}

// Assistant generates text for the assist and reminder endpoints.
type Assistant interface {
	Execute(ctx context.Context, task ai.TaskType, prompt, systemContext string) (string, bool)
}

// Searcher runs the Elasticsearch-backed search boxes.
type Searcher interface {
	SearchRiders(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
	SearchLeads(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// ReminderSender delivers composed reminders.
type ReminderSender interface {
	SendReminder(ctx context.Context, reminder notify.Reminder) (*notify.DispatchResult, error)
}

type Server struct {
	leaderboard LeaderboardAPI
	store       StoreAPI
	assistant   Assistant
	searcher    Searcher
	sender      ReminderSender
	cfg         *config.Config
	obs         *observability.Observability
	errs        *stderrors.ErrorHandler
	logger      logger.Logger
}

func New(
	leaderboard LeaderboardAPI,
	store StoreAPI,
	assistant Assistant,
	searcher Searcher,
	sender ReminderSender,
	cfg *config.Config,
	obs *observability.Observability,
	log logger.Logger,
) *Server {
	return &Server{
		leaderboard: leaderboard,
		store:       store,
		assistant:   assistant,
		searcher:    searcher,
		sender:      sender,
		cfg:         cfg,
		obs:         obs,
		errs:        stderrors.NewErrorHandler(log),
		logger:      log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Routes builds the service mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/leaderboard", s.instrument("leaderboard.top", s.handleLeaderboard))
	mux.HandleFunc("GET /api/leaderboard/podium", s.instrument("leaderboard.podium", s.handlePodium))
	mux.HandleFunc("POST /api/leaderboard/refresh", s.instrument("leaderboard.refresh", s.handleRefresh))
	mux.HandleFunc("GET /api/dashboard", s.instrument("dashboard.stats", s.handleDashboard))
	mux.HandleFunc("GET /api/dashboard/insight", s.instrument("dashboard.insight", s.handleDashboardInsight))
	mux.HandleFunc("GET /api/lists/{queryType}", s.instrument("lists.query", s.handleList))
	mux.HandleFunc("POST /api/assist", s.instrument("assist.generate", s.handleAssist))
	mux.HandleFunc("POST /api/assist/reply", s.instrument("assist.reply", s.handleAssistReply))
	mux.HandleFunc("POST /api/import/riders", s.instrument("import.riders", s.handleImportRiders))
	mux.HandleFunc("GET /api/export/riders", s.instrument("export.riders", s.handleExportRiders))
	mux.HandleFunc("GET /api/search/riders", s.instrument("search.riders", s.handleSearchRiders))
	mux.HandleFunc("GET /api/search/leads", s.instrument("search.leads", s.handleSearchLeads))
	mux.HandleFunc("PATCH /api/riders/{id}/wallet", s.instrument("riders.wallet", s.handleUpdateWallet))
	mux.HandleFunc("DELETE /api/riders/{id}", s.instrument("riders.delete", s.handleDeleteRider))
	mux.HandleFunc("DELETE /api/leaders/{id}", s.instrument("leaders.delete", s.handleDeleteLeader))
	mux.HandleFunc("POST /api/reminders", s.instrument("reminders.send", s.handleReminder))

	return mux
}

// instrument records one operation count and duration per request through
// the otel facade. Status collapses to success/error on the 400 boundary.
func (s *Server) instrument(operation string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		status := "success"
		if rec.status >= http.StatusBadRequest {
			status = "error"
		}
		s.obs.RecordOperation(r.Context(), operation, status)
		s.obs.RecordDuration(r.Context(), operation, time.Since(start), status)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
