package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mrossiello/profilelens/internal/refine"
	"github.com/mrossiello/profilelens/internal/report"
	"github.com/mrossiello/profilelens/internal/similarity"
)

// weightsEcho is the weights block returned alongside API results.
type weightsEcho struct {
	Keywords    float64 `json:"keywords"`
	Description float64 `json:"description"`
	Headline    float64 `json:"headline"`
	Normalized  bool    `json:"normalized"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDownload sends payload as a JSON file attachment.
func writeDownload(w http.ResponseWriter, payload any, filename string) {
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

func timestamp() string {
	return time.Now().Format("20060102_150405")
}

func floatParam(r *http.Request, key string, def float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// requestWeights builds normalized weights from the kw/desc/head/th query
// parameters, defaulting to the configured blend. The second return value
// reports whether rescaling happened.
func (s *Server) requestWeights(r *http.Request) (similarity.Weights, bool) {
	w := similarity.Weights{
		Keywords:    floatParam(r, "kw", s.cfg.Weights.Keywords),
		Description: floatParam(r, "desc", s.cfg.Weights.Description),
		Headline:    floatParam(r, "head", s.cfg.Weights.Headline),
		Threshold:   floatParam(r, "th", s.cfg.Weights.Threshold),
	}
	return w.Normalize()
}

func folderParam(r *http.Request) string {
	folder := strings.TrimSpace(r.URL.Query().Get("folder"))
	return strings.ReplaceAll(folder, "\\", "/")
}

func pairParams(r *http.Request) (d1, d2 string) {
	q := r.URL.Query()
	return strings.TrimSpace(q.Get("d1")), strings.TrimSpace(q.Get("d2"))
}

func reportWeights(w similarity.Weights, normalized bool) report.Weights {
	return report.Weights{
		Keywords:    w.Keywords,
		Description: w.Description,
		Headline:    w.Headline,
		Normalized:  normalized,
		Threshold:   w.Threshold,
	}
}

// findPair matches a scored pair in either order.
func findPair(scores []similarity.Score, d1, d2 string) (similarity.Score, bool) {
	for _, s := range scores {
		if (s.DataProfile1 == d1 && s.DataProfile2 == d2) ||
			(s.DataProfile1 == d2 && s.DataProfile2 == d1) {
			return s, true
		}
	}
	return similarity.Score{}, false
}

func stripJSON(name string) string {
	return strings.TrimSuffix(name, ".json")
}

func (s *Server) handleSimilarities(w http.ResponseWriter, r *http.Request) {
	weights, normalized := s.requestWeights(r)
	scores, fromCache, err := s.engine.Compute(r.Context(), folderParam(r), weights)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results":    scores,
		"from_cache": fromCache,
		"threshold":  weights.Threshold,
		"weights": weightsEcho{
			Keywords:    weights.Keywords,
			Description: weights.Description,
			Headline:    weights.Headline,
			Normalized:  normalized,
		},
	})
}

func (s *Server) handleSingleSimilarity(w http.ResponseWriter, r *http.Request) {
	weights, normalized := s.requestWeights(r)
	d1, d2 := pairParams(r)

	scores, fromCache, err := s.engine.Compute(r.Context(), folderParam(r), weights)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, ok := findPair(scores, d1, d2)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Pair %s/%s not found.", d1, d2))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"match":      match,
		"from_cache": fromCache,
		"threshold":  weights.Threshold,
		"weights": weightsEcho{
			Keywords:    weights.Keywords,
			Description: weights.Description,
			Headline:    weights.Headline,
			Normalized:  normalized,
		},
	})
}

type selectRequest struct {
	Folder      string   `json:"folder"`
	Profiles    []string `json:"profiles"`
	Keywords    *float64 `json:"kw"`
	Description *float64 `json:"desc"`
	Headline    *float64 `json:"head"`
	Threshold   *float64 `json:"th"`
}

func (s *Server) handleSelectSimilarities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Profiles) == 0 {
		writeError(w, http.StatusBadRequest, "No profiles provided.")
		return
	}

	weights := similarity.Weights{
		Keywords:    s.cfg.Weights.Keywords,
		Description: s.cfg.Weights.Description,
		Headline:    s.cfg.Weights.Headline,
		Threshold:   s.cfg.Weights.Threshold,
	}
	if req.Keywords != nil {
		weights.Keywords = *req.Keywords
	}
	if req.Description != nil {
		weights.Description = *req.Description
	}
	if req.Headline != nil {
		weights.Headline = *req.Headline
	}
	if req.Threshold != nil {
		weights.Threshold = *req.Threshold
	}
	weights, normalized := weights.Normalize()

	scores, fromCache, err := s.engine.Compute(r.Context(), req.Folder, weights)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	selected := make(map[string]struct{}, len(req.Profiles))
	for _, p := range req.Profiles {
		selected[p] = struct{}{}
	}
	filtered := []similarity.Score{}
	for _, sc := range scores {
		if _, ok1 := selected[sc.DataProfile1]; !ok1 {
			continue
		}
		if _, ok2 := selected[sc.DataProfile2]; !ok2 {
			continue
		}
		filtered = append(filtered, sc)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results":           filtered,
		"selected_profiles": req.Profiles,
		"from_cache":        fromCache,
		"threshold":         weights.Threshold,
		"weights": weightsEcho{
			Keywords:    weights.Keywords,
			Description: weights.Description,
			Headline:    weights.Headline,
			Normalized:  normalized,
		},
	})
}

// buildFolderReport computes scores and assembles the folder report shared
// by the report view and download handlers.
func (s *Server) buildFolderReport(r *http.Request) (*report.Document, error) {
	weights, normalized := s.requestWeights(r)
	folder := folderParam(r)

	scores, fromCache, err := s.engine.Compute(r.Context(), folder, weights)
	if err != nil {
		return nil, err
	}

	doc := report.Build(folder, reportWeights(weights, normalized), scores)
	doc.FromCache = fromCache
	return doc, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.buildFolderReport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	doc, err := s.buildFolderReport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeDownload(w, doc, fmt.Sprintf("similarity_%s.json", timestamp()))
}

func (s *Server) handlePairDownload(w http.ResponseWriter, r *http.Request) {
	weights, normalized := s.requestWeights(r)
	folder := folderParam(r)
	d1, d2 := pairParams(r)

	scores, _, err := s.engine.Compute(r.Context(), folder, weights)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, ok := findPair(scores, d1, d2)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Pair %s/%s not found.", d1, d2))
		return
	}

	doc := report.BuildPair(folder, reportWeights(weights, normalized), match)
	filename := fmt.Sprintf("similarity_%s__%s_%s.json", stripJSON(d1), stripJSON(d2), timestamp())
	writeDownload(w, doc, filename)
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	folder := folderParam(r)
	d1, d2 := pairParams(r)

	rep, err := refine.Refine(folder, d1, d2)
	if err != nil {
		if errors.Is(err, refine.ErrNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRefineDownload(w http.ResponseWriter, r *http.Request) {
	folder := folderParam(r)
	d1, d2 := pairParams(r)

	rep, err := refine.Refine(folder, d1, d2)
	if err != nil {
		if errors.Is(err, refine.ErrNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	profile := refine.BuildRefinementProfile(rep)
	filename := fmt.Sprintf("%s__%s.refinement.json", stripJSON(d1), stripJSON(d2))
	writeDownload(w, profile, filename)
}
