package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fuzzydedup/internal/store"
	"github.com/fuzzydedup/internal/web/jobs"
)

// Config represents the web server configuration (simplified)
type Config struct {
	Features struct {
		ExportEnabled      bool `json:"export_enabled"`
		PersistenceEnabled bool `json:"persistence_enabled"`
	} `json:"features"`
}

// APIHandler handles statistics and run-history endpoints.
type APIHandler struct {
	Store  *store.Store
	Jobs   *jobs.Manager
	Config *Config
}

// StatsResponse represents overall statistics
type StatsResponse struct {
	ActiveJobs     int  `json:"active_jobs"`
	RunCount       int  `json:"run_count"`
	RecordCount    int  `json:"record_count"`
	GroupCount     int  `json:"group_count"`
	GroupedRecords int  `json:"grouped_records"`
	Persistence    bool `json:"persistence"`
}

// GetStats returns overall system statistics. Persisted totals are only
// included when a database is configured.
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{
		ActiveJobs:  h.Jobs.ActiveCount(),
		Persistence: h.Store != nil,
	}

	if h.Store != nil {
		dbStats, err := h.Store.GetStats()
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		stats.RunCount = dbStats.RunCount
		stats.RecordCount = dbStats.RecordCount
		stats.GroupCount = dbStats.GroupCount
		stats.GroupedRecords = dbStats.GroupedRecords
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ListRuns returns persisted runs, newest first. ?limit= caps the count.
func (h *APIHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.Store.ListRuns(limit)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun returns one persisted run by id.
func (h *APIHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusNotImplemented, "persistence is not configured")
		return
	}

	run, err := h.Store.GetRun(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}
