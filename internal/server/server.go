// Package server hosts the local visualization UI: static assets plus a
// small JSON API that generates single mazes on demand. It shares the
// generator and solver registries with the dataset pipeline but sits outside
// the deterministic output path; API requests seed their own PRNG.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lamim/mazeforge/internal/generator"
	"github.com/lamim/mazeforge/internal/rng"
	"github.com/lamim/mazeforge/internal/solver"
	"github.com/lamim/mazeforge/pkg/models"
)

// Server serves the visualization UI and the maze API.
type Server struct {
	staticDir string
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New builds a server rooted at staticDir.
func New(staticDir string, logger *slog.Logger) *Server {
	s := &Server{
		staticDir: staticDir,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/maze", requireGET(s.handleMaze))
	s.mux.HandleFunc("/api/algorithms", requireGET(s.handleAlgorithms))
	s.mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return s
}

// requireGET rejects non-GET requests, matching the semantics of the
// Go 1.22+ "GET /path" ServeMux pattern on the Go 1.21 toolchain this
// module is built with.
func requireGET(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// ListenAndServe blocks serving HTTP on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

type mazeResponse struct {
	Rows      int                     `json:"rows"`
	Cols      int                     `json:"cols"`
	Grid      []uint8                 `json:"grid"`
	Start     [2]int                  `json:"start"`
	Goal      [2]int                  `json:"goal"`
	Reasoning []models.ReasoningEvent `json:"reasoning"`
	Plan      []models.Cell           `json:"plan"`
}

func (s *Server) handleMaze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	name := q.Get("generator")
	if name == "" {
		name = "dfs"
	}
	gen, err := generator.Lookup(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := queryInt(q.Get("rows"), 15)
	if err != nil {
		http.Error(w, "invalid rows: "+err.Error(), http.StatusBadRequest)
		return
	}
	cols, err := queryInt(q.Get("cols"), 15)
	if err != nil {
		http.Error(w, "invalid cols: "+err.Error(), http.StatusBadRequest)
		return
	}
	seedVal, err := queryInt(q.Get("seed"), 1)
	if err != nil {
		http.Error(w, "invalid seed: "+err.Error(), http.StatusBadRequest)
		return
	}
	seed := int64(seedVal)
	if rows < 1 || cols < 1 || (rows == 1 && cols == 1) || rows > 200 || cols > 200 {
		http.Error(w, "unsupported grid dimensions", http.StatusBadRequest)
		return
	}

	spec, err := gen(rows, cols, rng.New(seed), generator.DefaultParams())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	res := solver.Solve(spec.Grid, spec.Start, spec.Goal, solver.Manhattan)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(mazeResponse{
		Rows:      spec.Grid.Rows,
		Cols:      spec.Grid.Cols,
		Grid:      spec.Grid.Cells,
		Start:     [2]int{spec.Start.X, spec.Start.Y},
		Goal:      [2]int{spec.Goal.X, spec.Goal.Y},
		Reasoning: res.Reasoning,
		Plan:      res.Plan,
	}); err != nil {
		s.logger.Error("Failed to encode maze response", "error", err)
	}
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{
		"generators": generator.Names(),
		"solvers":    solver.Names(),
	})
}

// queryInt parses an optional integer query parameter. An absent parameter
// takes the fallback; a present but non-numeric value is an error.
func queryInt(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}
