package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/briefdeck/briefdeck/internal/model"
)

const (
	defaultEmailLimit = 100
	defaultTrendDays  = 30
	maxBodyBytes      = 1 << 20
)

// detailResponse is the backend's error body.
type detailResponse struct {
	Detail string `json:"detail"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDetail writes an error response.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeDatasetError maps a dataset error to a status code.
func (s *Server) writeDatasetError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeDetail(w, http.StatusNotFound, notFound)
	case errors.Is(err, ErrDuplicate):
		writeDetail(w, http.StatusBadRequest, "Category with this name already exists")
	case errors.Is(err, ErrInvalid):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody decodes a bounded JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// summaryDate parses summary_date, defaulting to today.
func (s *Server) summaryDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("summary_date")
	if raw == "" {
		return s.data.Now(), true
	}
	day, err := time.Parse(dayLayout, raw)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "summary_date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	skip, ok := queryInt(r, "skip", 0)
	if !ok || skip < 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
		return
	}
	limit, ok := queryInt(r, "limit", defaultEmailLimit)
	if !ok || limit < 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
		return
	}

	var processed *bool
	if raw := r.URL.Query().Get("processed"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "processed must be a boolean")
			return
		}
		processed = &b
	}

	writeJSON(w, http.StatusOK, s.data.Emails(skip, limit, processed))
}

func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	e, err := s.data.Email(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDatasetError(w, err, "Email not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleAnalyzeEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.data.Analyze(id); err != nil {
		s.writeDatasetError(w, err, "Email not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Email analysis started",
		"email_id": id,
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Categories())
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in model.CategoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.data.CreateCategory(in)
	if err != nil {
		s.writeDatasetError(w, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch model.CategoryPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	c, err := s.data.UpdateCategory(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeDatasetError(w, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.data.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		s.writeDatasetError(w, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	day, ok := s.summaryDate(w, r)
	if !ok {
		return
	}
	summary, err := s.data.Summary(day)
	if err != nil {
		s.writeDatasetError(w, err, "Summary not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	day, ok := s.summaryDate(w, r)
	if !ok {
		return
	}
	summary, err := s.data.GenerateSummary(day)
	if err != nil {
		s.writeDatasetError(w, err, "Summary not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Summary generated successfully",
		"date":       summary.Date,
		"summary_id": summary.ID,
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Overview())
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days", defaultTrendDays)
	if !ok || days < 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "days must be a positive integer")
		return
	}
	writeJSON(w, http.StatusOK, s.data.Trends(days))
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Preferences())
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch model.PreferencePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	prefs, err := s.data.UpdatePreferences(patch)
	if err != nil {
		s.writeDatasetError(w, err, "Preferences not found")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Content())
}
