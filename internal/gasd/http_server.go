package gasd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/qsearchlab/gas-core/pkg/config"
	"github.com/qsearchlab/gas-core/pkg/logger"
)

// HTTPServer exposes the job API over JSON.
type HTTPServer struct {
	mux      *http.ServeMux
	store    *JobStore
	Executor *JobExecutor
}

func NewHTTPServer(store *JobStore, executor *JobExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/jobs", s.handleJobs)
	s.mux.HandleFunc("/v1/jobs/", s.handleJobByID)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// handleJobs handles /v1/jobs endpoint
func (s *HTTPServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleJobByID handles /v1/jobs/{id} and related endpoints
func (s *HTTPServer) handleJobByID(w http.ResponseWriter, r *http.Request) {
	// Parse path: /v1/jobs/{id}, /v1/jobs/{id}:stop or /v1/jobs/{id}/report
	path := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	if strings.HasSuffix(path, ":stop") {
		jobID := strings.TrimSuffix(path, ":stop")
		if r.Method == http.MethodPost {
			s.handleStopJob(w, r, jobID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, "/report") {
		jobID := strings.TrimSuffix(path, "/report")
		if r.Method == http.MethodGet {
			s.handleGetJobReport(w, r, jobID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, "/history") {
		jobID := strings.TrimSuffix(path, "/history")
		if r.Method == http.MethodGet {
			s.handleGetJobHistory(w, r, jobID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Otherwise it's GET /v1/jobs/{id}
	if r.Method == http.MethodGet {
		s.handleGetJob(w, r, path)
	} else {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreateJob handles POST /v1/jobs. The problem and solver options
// arrive as a YAML payload inside a JSON envelope, and an accepted job is
// started immediately.
func (s *HTTPServer) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID   string `json:"job_id,omitempty"`
		JobYAML string `json:"job_yaml"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.JobYAML == "" {
		s.writeError(w, http.StatusBadRequest, "job_yaml is required")
		return
	}

	spec, err := config.ParseJobYAMLString(req.JobYAML)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.Create(req.JobID, spec)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			s.writeError(w, http.StatusConflict, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if _, err := s.Executor.Start(rec.Job.ID); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("job created (HTTP)", "job_id", rec.Job.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"job": rec.Job,
	})
}

// handleListJobs handles GET /v1/jobs with pagination and status filtering
func (s *HTTPServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > 1000 {
				limit = 1000
			}
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var statusFilter JobStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		statusFilter = parseJobStatus(statusStr)
		if statusFilter == "" {
			s.writeError(w, http.StatusBadRequest, "unknown status filter: "+statusStr)
			return
		}
	}

	records := s.store.ListFiltered(limit, offset, statusFilter)

	jobs := make([]*Job, 0, len(records))
	for _, rec := range records {
		jobs = append(jobs, rec.Job)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"jobs": jobs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(jobs),
		},
	})
}

// parseJobStatus maps a status query value to a JobStatus, "" if unknown.
func parseJobStatus(statusStr string) JobStatus {
	switch strings.ToLower(statusStr) {
	case "pending":
		return StatusPending
	case "running":
		return StatusRunning
	case "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	case "cancelled":
		return StatusCancelled
	default:
		return ""
	}
}

// handleGetJob handles GET /v1/jobs/{id}
func (s *HTTPServer) handleGetJob(w http.ResponseWriter, _ *http.Request, jobID string) {
	rec, ok := s.store.Get(jobID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"job": rec.Job,
	})
}

// handleStopJob handles POST /v1/jobs/{id}:stop
func (s *HTTPServer) handleStopJob(w http.ResponseWriter, _ *http.Request, jobID string) {
	updated, err := s.Executor.Stop(jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrJobNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrJobIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("job cancelled (HTTP)", "job_id", jobID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"job": updated.Job,
	})
}

// handleGetJobReport handles GET /v1/jobs/{id}/report
func (s *HTTPServer) handleGetJobReport(w http.ResponseWriter, _ *http.Request, jobID string) {
	rec, ok := s.store.Get(jobID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	if rec.Report == nil {
		s.writeError(w, http.StatusPreconditionFailed, "report not available")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"job_id": jobID,
		"report": rec.Report,
	})
}

// handleGetJobHistory handles GET /v1/jobs/{id}/history
func (s *HTTPServer) handleGetJobHistory(w http.ResponseWriter, _ *http.Request, jobID string) {
	rec, ok := s.store.Get(jobID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"job_id": jobID,
		"rounds": rec.History,
	})
}

// Helper functions

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
