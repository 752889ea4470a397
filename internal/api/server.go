package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"twobot/internal/biz/repo"
	"twobot/internal/biz/usecase"
)

// Server is the read-only HTTP query surface. It only reads the counter
// store and the profile cache; it has no logic beyond formatting and
// sorting, and never mutates state.
type Server struct {
	counters repo.CounterRepo
	profiles *usecase.ProfileUsecase

	server *http.Server
	addr   string
}

// userEntry is the JSON shape for per-user counter queries.
type userEntry struct {
	ID   string  `json:"id"`
	Twos int     `json:"twos"`
	Last float64 `json:"last"`
}

// leaderboardEntry adds the resolved display name for leaderboard rows.
type leaderboardEntry struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Twos int     `json:"twos"`
	Last float64 `json:"last"`
}

// NewServer creates the query API server.
func NewServer(counters repo.CounterRepo, profiles *usecase.ProfileUsecase, addr string) *Server {
	return &Server{
		counters: counters,
		profiles: profiles,
		addr:     addr,
	}
}

// Start starts the HTTP server and blocks until Stop.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.logRequests(s.Handler()),
	}

	fmt.Printf("[API] Starting HTTP server on %s\n", s.addr)
	return s.server.ListenAndServe()
}

// Stop shuts the HTTP server down.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ids", s.handleIDs)
	mux.HandleFunc("/twos/", s.handleTwos)
	mux.HandleFunc("/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/info/", s.handleInfo)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()[:8]
		fmt.Printf("[API] %s %s %s\n", reqID, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// handleIndex serves a plain-text banner on exactly "/".
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Hello, two-bot!")
}

// handleIDs returns every tracked canonical identifier.
func (s *Server) handleIDs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.counters.IDs())
}

// handleTwos returns the counter record for one identifier, 404 when the
// identifier has never triggered.
func (s *Server) handleTwos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/twos/")
	record, ok := s.counters.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "No user with that ID")
		return
	}
	s.writeJSON(w, userEntry{ID: id, Twos: record.Count, Last: record.LastTrigger})
}

// handleLeaderboard returns all users with count > 0, most-triggered first.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := s.counters.Leaderboard()
	result := make([]leaderboardEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, leaderboardEntry{
			ID:   e.ID,
			Name: s.profiles.DisplayName(r.Context(), e.ID),
			Twos: e.Count,
			Last: e.LastTrigger,
		})
	}
	s.writeJSON(w, result)
}

// handleInfo returns the profile for one identifier, 404 when unknown.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/info/")
	profile, err := s.profiles.Resolve(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		s.writeError(w, http.StatusNotFound, "No user with that ID")
		return
	}
	s.writeJSON(w, profile)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
