// Package server exposes the similarity and refinement pipeline over HTTP:
// a JSON API mirroring the CLI operations plus a small HTML front end.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/mrossiello/profilelens/internal/config"
	"github.com/mrossiello/profilelens/internal/refine"
	"github.com/mrossiello/profilelens/internal/similarity"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the similarity API and UI.
type Server struct {
	cfg    *config.Config
	engine *similarity.Engine
	jobs   *jobRegistry
	pages  map[string]*template.Template
	mux    *http.ServeMux
}

// New creates a new Server.
func New(cfg *config.Config, engine *similarity.Engine) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"pct":      func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "refine.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		cfg:    cfg,
		engine: engine,
		jobs:   newJobRegistry(),
		pages:  pages,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// HTML pages
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/refine", s.handleRefinePage)

	// JSON API
	s.mux.HandleFunc("/api/similarities", s.handleSimilarities)
	s.mux.HandleFunc("/api/similarity/single", s.handleSingleSimilarity)
	s.mux.HandleFunc("/api/similarities/select", s.handleSelectSimilarities)
	s.mux.HandleFunc("/api/report", s.handleReport)
	s.mux.HandleFunc("/api/report/download", s.handleReportDownload)
	s.mux.HandleFunc("/api/report/pair/download", s.handlePairDownload)
	s.mux.HandleFunc("/api/refine", s.handleRefine)
	s.mux.HandleFunc("/api/refine/download", s.handleRefineDownload)
	s.mux.HandleFunc("/api/jobs/report", s.handleStartReportJob)
	s.mux.HandleFunc("/api/jobs/refine", s.handleStartRefineJob)
	s.mux.HandleFunc("/api/jobs/", s.handleJob)
}

// indexResult is one row of the analysis table on the index page.
type indexResult struct {
	Score     similarity.Score
	RefineURL string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := map[string]any{
		"Folder":    s.cfg.Profiles.Folder,
		"Weights":   s.cfg.Weights,
		"Threshold": s.cfg.Weights.Threshold,
	}

	folder := strings.TrimSpace(r.URL.Query().Get("folder"))
	if folder == "" {
		s.render(w, "index.html", data)
		return
	}
	data["Folder"] = folder

	weights, _ := s.requestWeights(r)
	scores, fromCache, err := s.engine.Compute(r.Context(), folder, weights)
	if err != nil {
		data["Error"] = err.Error()
		s.render(w, "index.html", data)
		return
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CombinedSimilarity > scores[j].CombinedSimilarity
	})

	results := make([]indexResult, len(scores))
	passing := 0
	for i, sc := range scores {
		if sc.PassesThreshold {
			passing++
		}
		results[i] = indexResult{
			Score: sc,
			RefineURL: fmt.Sprintf("/refine?folder=%s&d1=%s&d2=%s",
				template.URLQueryEscaper(folder),
				template.URLQueryEscaper(sc.DataProfile1),
				template.URLQueryEscaper(sc.DataProfile2)),
		}
	}

	data["Results"] = results
	data["FromCache"] = fromCache
	data["Passing"] = passing
	data["Threshold"] = weights.Threshold
	s.render(w, "index.html", data)
}

func (s *Server) handleRefinePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	folder := strings.TrimSpace(q.Get("folder"))
	d1 := strings.TrimSpace(q.Get("d1"))
	d2 := strings.TrimSpace(q.Get("d2"))
	if folder == "" || d1 == "" || d2 == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := map[string]any{
		"Folder": folder,
		"D1":     d1,
		"D2":     d2,
	}

	rep, err := refine.Refine(folder, d1, d2)
	if err != nil {
		data["Error"] = err.Error()
		s.render(w, "refine.html", data)
		return
	}

	data["Report"] = rep
	data["DownloadURL"] = fmt.Sprintf("/api/refine/download?folder=%s&d1=%s&d2=%s",
		template.URLQueryEscaper(folder),
		template.URLQueryEscaper(d1),
		template.URLQueryEscaper(d2))
	s.render(w, "refine.html", data)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(cfg *config.Config, engine *similarity.Engine, port int) error {
	srv, err := New(cfg, engine)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
