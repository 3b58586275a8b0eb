// internal/server/handlers.go
package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fleet-backoffice/internal/ai"
	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/metrics"
	"fleet-backoffice/internal/models"
	"fleet-backoffice/internal/notify"
	"fleet-backoffice/internal/rollup"
	"fleet-backoffice/internal/search"
	"fleet-backoffice/internal/spreadsheet"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ==========================
// Leaderboard
// ==========================

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Leaderboard.TopN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.errs.WriteError(w, stderrors.NewValidationFailedError([]stderrors.FieldError{
				{Field: "limit", Message: "must be a non-negative integer"},
			}))
			return
		}
		limit = parsed
	}

	entries, err := s.leaderboard.Top(r.Context(), limit)
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

func (s *Server) handlePodium(w http.ResponseWriter, r *http.Request) {
	entries, err := s.leaderboard.Podium(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"podium": entries})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	entries, err := s.leaderboard.Refresh(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// ==========================
// Dashboard & lists
// ==========================

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	riders, err := s.store.Riders(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	leads, err := s.store.Leads(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	requests, err := s.store.Requests(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, rollup.BuildDashboardStats(riders, leads, requests))
}

func (s *Server) handleDashboardInsight(w http.ResponseWriter, r *http.Request) {
	riders, err := s.store.Riders(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	leads, err := s.store.Leads(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	requests, err := s.store.Requests(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}

	stats := rollup.BuildDashboardStats(riders, leads, requests)
	summary := fmt.Sprintf(
		"riders: %d total, %d active, %d inactive, %d with negative wallets; wallet total %d; leads: %d total, %d converted (%d%%); pending requests: %d",
		stats.TotalRiders, stats.ActiveRiders, stats.InactiveRiders, stats.NegativeWallet,
		stats.WalletTotal, stats.TotalLeads, stats.ConvertedLeads, stats.ConversionRate,
		stats.PendingRequests,
	)

	content, ok := s.assistant.Execute(r.Context(), ai.TaskAnalysis, ai.InsightPrompt(summary), "")
	if !ok {
		content = ai.FallbackInsight
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":     stats,
		"insight":   content,
		"generated": ok,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	queryType := models.QueryType(r.PathValue("queryType"))

	params := map[string]interface{}{}
	if leaderID := r.URL.Query().Get("leaderId"); leaderID != "" {
		params["leaderId"] = leaderID
	}

	data, rowCount, execTime, err := s.store.Query(r.Context(), queryType, params)
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":               data,
		"rowCount":           rowCount,
		"queryExecutionTime": execTime,
	})
}

// ==========================
// AI assist
// ==========================

type assistRequest struct {
	Task    string `json:"task"`
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
}

type assistResponse struct {
	Content   string `json:"content"`
	Generated bool   `json:"generated"`
}

func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errs.WriteError(w, stderrors.NewValidationFailedError([]stderrors.FieldError{
			{Field: "body", Message: "invalid JSON"},
		}))
		return
	}
	if req.Prompt == "" {
		s.errs.WriteError(w, stderrors.NewRequiredFieldMissingError("prompt"))
		return
	}

	task := ai.TaskType(req.Task)
	content, ok := s.assistant.Execute(r.Context(), task, req.Prompt, req.Context)
	if !ok {
		content = staticFallback(task)
	}

	s.writeJSON(w, http.StatusOK, assistResponse{Content: content, Generated: ok})
}

type replyRequest struct {
	Conversation string `json:"conversation"`
	Question     string `json:"question"`
}

func (s *Server) handleAssistReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errs.WriteError(w, stderrors.NewValidationFailedError([]stderrors.FieldError{
			{Field: "body", Message: "invalid JSON"},
		}))
		return
	}
	if req.Question == "" {
		s.errs.WriteError(w, stderrors.NewRequiredFieldMissingError("question"))
		return
	}

	prompt := ai.ChatReplyPrompt(req.Conversation, req.Question)
	content, ok := s.assistant.Execute(r.Context(), ai.TaskSpeed, prompt, "")
	if !ok {
		content = ai.FallbackReply
	}
	s.writeJSON(w, http.StatusOK, assistResponse{Content: content, Generated: ok})
}

// staticFallback picks the canned copy for a task when generation fails;
// the endpoint always answers 200 with usable text.
func staticFallback(task ai.TaskType) string {
	switch task {
	case ai.TaskAnalysis:
		return ai.FallbackInsight
	case ai.TaskCreative:
		return ai.FallbackReminder
	default:
		return ai.FallbackReply
	}
}

// ==========================
// Spreadsheet import/export
// ==========================

func (s *Server) handleImportRiders(w http.ResponseWriter, r *http.Request) {
	reader := csv.NewReader(r.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		s.errs.WriteError(w, stderrors.NewValidationFailedError([]stderrors.FieldError{
			{Field: "body", Message: "unreadable CSV: " + err.Error()},
		}))
		return
	}

	if maxRows := s.cfg.Import.MaxRows; maxRows > 0 && len(records) > maxRows+1 {
		s.errs.WriteError(w, stderrors.NewValidationFailedError([]stderrors.FieldError{
			{Field: "body", Message: "too many rows in one batch"},
		}))
		return
	}

	report, riders, err := spreadsheet.ImportRiders(records)
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}

	if _, err := s.store.InsertRiders(r.Context(), riders); err != nil {
		s.errs.WriteError(w, err)
		return
	}

	metrics.ImportRowsTotal.WithLabelValues("succeeded").Add(float64(report.Succeeded))
	metrics.ImportRowsTotal.WithLabelValues("failed").Add(float64(report.Failed))

	s.logger.Info("rider import finished", map[string]interface{}{
		"batchId":   report.BatchID,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	})
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportRiders(w http.ResponseWriter, r *http.Request) {
	riders, err := s.store.Riders(r.Context())
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}

	headers := []string{"id", "fullName", "phone", "leaderId", "status", "walletAmount"}
	rows := make([][]string, 0, len(riders))
	for _, rider := range riders {
		leaderID := ""
		if rider.LeaderID != nil {
			leaderID = *rider.LeaderID
		}
		rows = append(rows, []string{
			rider.ID,
			rider.FullName,
			rider.Phone,
			leaderID,
			string(rider.Status),
			strconv.FormatInt(rider.WalletAmount, 10),
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="riders.csv"`)
	_, _ = w.Write([]byte(spreadsheet.ExportCSV(headers, rows)))
}

// ==========================
// Search
// ==========================

func searchParamsFromQuery(r *http.Request) search.SearchParams {
	params := search.SearchParams{
		Keywords: r.URL.Query().Get("q"),
		Status:   r.URL.Query().Get("status"),
		LeaderID: r.URL.Query().Get("leaderId"),
	}
	if from, err := strconv.Atoi(r.URL.Query().Get("from")); err == nil {
		params.From = from
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		params.Size = size
	}
	return params
}

func (s *Server) handleSearchRiders(w http.ResponseWriter, r *http.Request) {
	result, err := s.searcher.SearchRiders(r.Context(), searchParamsFromQuery(r))
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearchLeads(w http.ResponseWriter, r *http.Request) {
	result, err := s.searcher.SearchLeads(r.Context(), searchParamsFromQuery(r))
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// ==========================
// Rider/leader mutations
// ==========================

type walletUpdateRequest struct {
	WalletAmount int64 `json:"walletAmount"`
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	riderID := r.PathValue("id")

	var req walletUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errs.WriteError(w, stderrors.NewValidationFailedError([]stderrors.FieldError{
			{Field: "body", Message: "invalid JSON"},
		}))
		return
	}

	if err := s.store.UpdateRiderWallet(r.Context(), riderID, req.WalletAmount); err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           riderID,
		"walletAmount": req.WalletAmount,
	})
}

func (s *Server) handleDeleteRider(w http.ResponseWriter, r *http.Request) {
	riderID := r.PathValue("id")
	if err := s.store.SoftDeleteRider(r.Context(), riderID); err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"id": riderID, "status": string(models.RiderStatusDeleted)})
}

func (s *Server) handleDeleteLeader(w http.ResponseWriter, r *http.Request) {
	leaderID := r.PathValue("id")
	if err := s.store.DeleteLeader(r.Context(), leaderID); err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"id": leaderID})
}

// ==========================
// Reminders
// ==========================

type reminderRequest struct {
	RiderID      string `json:"riderId"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	WalletAmount int64  `json:"walletAmount"`
}

func (s *Server) handleReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errs.WriteError(w, stderrors.NewValidationFailedError([]stderrors.FieldError{
			{Field: "body", Message: "invalid JSON"},
		}))
		return
	}
	if req.RiderID == "" {
		s.errs.WriteError(w, stderrors.NewRequiredFieldMissingError("riderId"))
		return
	}

	rider := models.Rider{
		ID:           req.RiderID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		WalletAmount: req.WalletAmount,
	}
	message := notify.ComposeReminder(r.Context(), s.assistant, rider)

	result, err := s.sender.SendReminder(r.Context(), notify.Reminder{
		RiderID: req.RiderID,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: "Payment reminder",
		Message: message,
	})
	if err != nil {
		s.errs.WriteError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
