// Package api exposes a small read-only HTTP surface over the export
// archive: a health check, dry-run plans for cached days, and the latest
// run state.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adamthede/project-limitless-exporter/internal/exporter"
	"github.com/adamthede/project-limitless-exporter/internal/lifelog"
	"github.com/adamthede/project-limitless-exporter/internal/planner"
)

type Server struct {
	router    *chi.Mux
	port      int
	archive   *lifelog.Archive
	planner   *planner.Planner
	outputDir string
}

func NewServer(port int, archive *lifelog.Archive, pl *planner.Planner, outputDir string) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		archive:   archive,
		planner:   pl,
		outputDir: outputDir,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/plan", s.plan)
	router.Get("/api/v1/runs/latest", s.latestRun)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type planChunk struct {
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Label       string  `json:"label"`
	DurationMin float64 `json:"duration_minutes"`
	File        string  `json:"file"`
}

type planResponse struct {
	Date       string      `json:"date"`
	Chunks     []planChunk `json:"chunks"`
	TotalHours float64     `json:"total_hours"`
}

// plan builds a dry-run download plan for a cached day.
func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	ev, err := s.archive.DayEvidence(date)
	if err != nil {
		if errors.Is(err, lifelog.ErrNoData) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no lifelog data for date"})
			return
		}
		slog.Error("failed to load day evidence", "date", date, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load day data"})
		return
	}

	p := s.planner.Plan(ev)
	resp := planResponse{
		Date:       date,
		Chunks:     make([]planChunk, 0, len(p.Chunks)),
		TotalHours: p.TotalDuration().Hours(),
	}
	for _, c := range p.Chunks {
		resp.Chunks = append(resp.Chunks, planChunk{
			Start:       c.Start.Format(time.RFC3339),
			End:         c.End.Format(time.RFC3339),
			Label:       c.Label,
			DurationMin: c.Duration().Minutes(),
			File:        exporter.ChunkFileName(date, c),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// latestRun serves the persisted run state from the output directory.
func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) {
	state, err := exporter.LoadState(s.outputDir)
	if err != nil {
		slog.Error("failed to load run state", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load run state"})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
