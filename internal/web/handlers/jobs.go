package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fuzzydedup/internal/dedupe"
	"github.com/fuzzydedup/internal/tabular"
	"github.com/fuzzydedup/internal/web/jobs"
)

// Uploads are capped at 64 MiB of form data.
const maxUploadBytes = 64 << 20

// JobsHandler handles job creation, progress, results and export.
type JobsHandler struct {
	Jobs   *jobs.Manager
	Config *Config
}

// jsonJobRequest is the JSON alternative to a multipart file upload.
type jsonJobRequest struct {
	Headers      []string        `json:"headers"`
	Rows         [][]interface{} `json:"rows"`
	Threshold    *float64        `json:"threshold,omitempty"`
	PrefixLength *int            `json:"prefix_length,omitempty"`
}

// CreateJob accepts a dataset and starts an asynchronous deduplication
// run. The dataset arrives either as a multipart "file" field (.csv or
// .xlsx) or as a JSON body with headers and rows.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var table *tabular.Table
	threshold := dedupe.DefaultThreshold
	prefixLength := dedupe.DefaultPrefixLength

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req jsonJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
			return
		}
		table = tabular.NewTableFromValues(req.Headers, req.Rows)
		table.Source = "json upload"
		if req.Threshold != nil {
			threshold = *req.Threshold
		}
		if req.PrefixLength != nil {
			prefixLength = *req.PrefixLength
		}
	} else {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".csv":
			table, err = tabular.ParseCSV(file, header.Filename)
		case ".xlsx":
			table, err = tabular.ParseXLSX(file, header.Filename)
		default:
			writeError(w, http.StatusBadRequest, "unsupported file type: expected .csv or .xlsx")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse file: %v", err))
			return
		}

		if v := r.FormValue("threshold"); v != "" {
			threshold, err = strconv.ParseFloat(v, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid threshold")
				return
			}
		}
		if v := r.FormValue("prefix_length"); v != "" {
			prefixLength, err = strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid prefix_length")
				return
			}
		}
	}

	job, err := h.Jobs.Start(table, threshold, prefixLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(job.Snapshot())
}

// GetJob returns a job's status and progress.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// resultResponse pairs each record index with its group assignment.
type resultResponse struct {
	View        jobs.View           `json:"job"`
	Assignments []dedupe.Assignment `json:"assignments"`
}

// GetResult returns the full assignment mapping of a completed job.
func (h *JobsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookup(w, r)
	if !ok {
		return
	}

	_, assignments, err := job.Result()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resultResponse{View: job.Snapshot(), Assignments: assignments})
}

// ExportResult streams the annotated dataset with duplicate_group and
// duplicate_rows columns, as CSV or XLSX.
func (h *JobsHandler) ExportResult(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.ExportEnabled {
		writeError(w, http.StatusForbidden, "export is disabled")
		return
	}

	job, ok := h.lookup(w, r)
	if !ok {
		return
	}

	table, assignments, err := job.Result()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	annotated, err := tabular.AppendResults(table, assignments)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="deduplication_results.csv"`)
		if err := tabular.WriteCSVTo(annotated, w); err != nil {
			fmt.Printf("Export error for job %s: %v\n", job.ID, err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="deduplication_results.xlsx"`)
		if err := tabular.WriteXLSXTo(annotated, w); err != nil {
			fmt.Printf("Export error for job %s: %v\n", job.ID, err)
		}
	default:
		writeError(w, http.StatusBadRequest, "unsupported format: expected csv or xlsx")
	}
}

// StopJob raises the stop flag; the engine abandons the run between
// buckets and the result is discarded.
func (h *JobsHandler) StopJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.Jobs.Stop(id) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"job_id": id, "status": "stop requested"})
}

func (h *JobsHandler) lookup(w http.ResponseWriter, r *http.Request) (*jobs.Job, bool) {
	id := mux.Vars(r)["id"]
	job, ok := h.Jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	return job, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
