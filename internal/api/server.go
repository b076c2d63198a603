// Package api provides the HTTP API for observing the walker population.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
//
// The simulation is single-threaded: all reads and mutations of manager
// state are injected into the tick loop via Engine.Do rather than touched
// from request goroutines.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aravindSwamy94/carla/internal/engine"
	"github.com/aravindSwamy94/carla/internal/persistence"
	"github.com/aravindSwamy94/carla/internal/walker"
	"github.com/aravindSwamy94/carla/internal/world"
)

// tickWait is how long a request waits for the tick loop to service it
// before giving up.
const tickWait = 2 * time.Second

// Server serves the population state over HTTP.
type Server struct {
	Mgr      *walker.Manager
	Eng      *engine.Engine
	DB       *persistence.DB
	Points   []world.SpawnPoint
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/walkers", s.handleWalkers)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/points", s.handlePoints)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/target", s.adminOnly(s.handleTarget))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// onTick runs fn inside the tick loop and waits for it to complete.
// Returns false if the engine could not service the request in time.
func (s *Server) onTick(fn func()) bool {
	done := make(chan struct{})
	if !s.Eng.Do(func() {
		fn()
		close(done)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-time.After(tickWait):
		return false
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WALKERSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	ok := s.onTick(func() {
		stats := s.Mgr.Stats()
		status = map[string]any{
			"tick":        s.Mgr.LastTick(),
			"speed":       s.Eng.Speed,
			"running":     s.Eng.Running,
			"target":      s.Mgr.Target(),
			"spawning":    s.Mgr.SpawningEnabled(),
			"active":      s.Mgr.ActiveCount(),
			"blacklisted": s.Mgr.BlacklistedCount(),
			"stats":       stats,
		}
	})
	if !ok {
		http.Error(w, "simulation not responding", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleWalkers(w http.ResponseWriter, r *http.Request) {
	var walkers []walker.WalkerInfo
	ok := s.onTick(func() {
		walkers = s.Mgr.Walkers()
	})
	if !ok {
		http.Error(w, "simulation not responding", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"count":   len(walkers),
		"walkers": walkers,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		http.Error(w, "journal query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"count":  len(events),
		"events": events,
	})
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	ongoing := 0
	for _, p := range s.Points {
		if p.Ongoing {
			ongoing++
		}
	}
	writeJSON(w, map[string]any{
		"begin":   len(s.Points),
		"ongoing": ongoing,
		"points":  s.Points,
	})
}

// handleTarget changes the target population (POST {"target": N}).
func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Target int `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ok := s.onTick(func() {
		s.Mgr.SetTarget(req.Target)
	})
	if !ok {
		http.Error(w, "simulation not responding", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"target": req.Target})
}

// handleSpeed changes the simulation speed (POST {"speed": X}).
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Speed < 0 || req.Speed > 100 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ok := s.onTick(func() {
		s.Eng.Speed = req.Speed
	})
	if !ok {
		http.Error(w, "simulation not responding", http.StatusServiceUnavailable)
		return
	}
	slog.Info("simulation speed changed", "speed", req.Speed)
	writeJSON(w, map[string]any{"speed": req.Speed})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
