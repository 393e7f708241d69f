package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mrossiello/profilelens/internal/refine"
	"github.com/mrossiello/profilelens/internal/report"
	"github.com/mrossiello/profilelens/internal/similarity"
)

type jobStatus string

const (
	jobQueued     jobStatus = "queued"
	jobInProgress jobStatus = "in_progress"
	jobCompleted  jobStatus = "completed"
	jobFailed     jobStatus = "failed"
)

type job struct {
	ID       string
	Type     string
	Status   jobStatus
	Progress int
	Message  string
	Params   map[string]any
	Result   any
}

// jobRegistry is the in-memory job store. Jobs live for the lifetime of the
// process only.
type jobRegistry struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: map[string]*job{}}
}

func (r *jobRegistry) create(jobType string, params map[string]any) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = &job{
		ID:       id,
		Type:     jobType,
		Status:   jobQueued,
		Progress: 0,
		Message:  "Queued",
		Params:   params,
	}
	return id
}

func (r *jobRegistry) update(id string, status jobStatus, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		j.Status = status
		j.Progress = progress
		j.Message = message
	}
}

func (r *jobRegistry) complete(id string, result any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		j.Status = jobCompleted
		j.Progress = 100
		j.Message = "Completed"
		j.Result = result
	}
}

func (r *jobRegistry) fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		j.Status = jobFailed
		j.Progress = 100
		j.Message = message
	}
}

// snapshot returns a copy of the job for safe reading outside the lock.
func (r *jobRegistry) snapshot(id string) (job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return job{}, false
	}
	return *j, true
}

func (s *Server) handleStartReportJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	weights, normalized := s.requestWeights(r)
	folder := folderParam(r)

	id := s.jobs.create("report", map[string]any{
		"folder":     folder,
		"kw":         weights.Keywords,
		"desc":       weights.Description,
		"head":       weights.Headline,
		"th":         weights.Threshold,
		"normalized": normalized,
	})

	go s.runReportJob(id, folder, weights, normalized)
	writeJSON(w, http.StatusOK, map[string]any{"job_id": id, "status": jobQueued})
}

func (s *Server) handleStartRefineJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	weights, normalized := s.requestWeights(r)
	folder := folderParam(r)
	d1, d2 := pairParams(r)

	id := s.jobs.create("refine", map[string]any{
		"folder":     folder,
		"d1":         d1,
		"d2":         d2,
		"kw":         weights.Keywords,
		"desc":       weights.Description,
		"head":       weights.Headline,
		"th":         weights.Threshold,
		"normalized": normalized,
	})

	go s.runRefineJob(id, folder, d1, d2)
	writeJSON(w, http.StatusOK, map[string]any{"job_id": id, "status": jobQueued})
}

func (s *Server) runReportJob(id, folder string, weights similarity.Weights, normalized bool) {
	s.jobs.update(id, jobInProgress, 5, "Starting report job...")

	s.jobs.update(id, jobInProgress, 20, "Computing similarities...")
	scores, fromCache, err := s.engine.Compute(context.Background(), folder, weights)
	if err != nil {
		s.jobs.fail(id, err.Error())
		return
	}

	s.jobs.update(id, jobInProgress, 85, "Building report...")
	doc := report.Build(folder, reportWeights(weights, normalized), scores)
	doc.FromCache = fromCache

	s.jobs.complete(id, doc)
}

func (s *Server) runRefineJob(id, folder, d1, d2 string) {
	s.jobs.update(id, jobInProgress, 5, "Starting refine job...")

	s.jobs.update(id, jobInProgress, 60, "Running refinement...")
	rep, err := refine.Refine(folder, d1, d2)
	if err != nil {
		s.jobs.fail(id, err.Error())
		return
	}

	s.jobs.update(id, jobInProgress, 90, "Building refinement profile...")
	profile := refine.BuildRefinementProfile(rep)

	s.jobs.complete(id, profile)
}

// handleJob serves /api/jobs/{id}, /api/jobs/{id}/result, and
// /api/jobs/{id}/download.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	j, ok := s.jobs.snapshot(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		writeJSON(w, http.StatusOK, map[string]any{
			"job_id":   j.ID,
			"type":     j.Type,
			"status":   j.Status,
			"progress": j.Progress,
			"message":  j.Message,
			"params":   j.Params,
		})
	case "result":
		if j.Status != jobCompleted {
			writeJSON(w, http.StatusOK, map[string]any{
				"job_id":   j.ID,
				"status":   j.Status,
				"progress": j.Progress,
				"message":  j.Message,
			})
			return
		}
		writeJSON(w, http.StatusOK, j.Result)
	case "download":
		if j.Status != jobCompleted {
			writeError(w, http.StatusConflict, "Job not completed yet")
			return
		}
		filename := fmt.Sprintf("%s_%s_%s.json", j.Type, j.ID, timestamp())
		writeDownload(w, j.Result, filename)
	default:
		http.NotFound(w, r)
	}
}
