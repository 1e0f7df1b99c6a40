// Package api provides the HTTP API server for remote board submission.
// The operator types the round's letters on a laptop or phone while the
// device itself drives the paired host.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/TSKoduru/rpi-gamehawk/internal/board"
	"github.com/TSKoduru/rpi-gamehawk/internal/config"
	"github.com/TSKoduru/rpi-gamehawk/internal/pointer"
	"github.com/TSKoduru/rpi-gamehawk/internal/session"
)

// Server provides HTTP endpoints for solving and running boards remotely
type Server struct {
	configMgr *config.Manager
	session   *session.Session
	token     string
	wsMgr     *WSManager

	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// boardRequest is the body of /api/solve and /api/run
type boardRequest struct {
	Board string `json:"board"`
}

// NewServer creates a new API server
func NewServer(configMgr *config.Manager, sess *session.Session) *Server {
	s := &Server{
		configMgr: configMgr,
		session:   sess,
	}
	s.wsMgr = newWSManager(s)
	sess.SetOnWord(func(word string, index, total int) {
		s.wsMgr.BroadcastWord(word, index, total)
	})
	return s
}

// Start starts the API server on the specified port. Blocking.
func (s *Server) Start(port int) error {
	cfg := s.configMgr.Get()
	s.token = cfg.API.Token

	go s.wsMgr.start()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/solve", s.handleSolve)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/stop", s.handleStop)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("API: Starting server on %s", addr)

	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		log.Printf("ERROR: API server failed to listen on %s: %v", addr, err)
		return err
	}

	server := &http.Server{
		Handler: s.authMiddleware(s.recoverMiddleware(mux)),
	}
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Printf("ERROR: API server stopped: %v", err)
		return err
	}
	return nil
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC RECOV: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the API token if configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("API: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.token != "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "Bearer "+s.token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// handleSolve handles POST /api/solve - solve without touching the pointer
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req boardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	results, err := s.session.Solve(req.Board)
	if err != nil {
		if errors.Is(err, board.ErrBadLength) || errors.Is(err, board.ErrNotLetters) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":      len(results),
		"elapsed_ms": time.Since(start).Milliseconds(),
		"words":      results,
	})
}

// handleRun handles POST /api/run - solve and replay gestures. The solve
// result is returned immediately; gestures run in the background with
// progress pushed over the WebSocket.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req boardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	results, err := s.session.Solve(req.Board)
	if err != nil {
		if errors.Is(err, board.ErrBadLength) || errors.Is(err, board.ErrNotLetters) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.cancelRun != nil {
		s.mu.Unlock()
		cancel()
		http.Error(w, "A run is already in progress", http.StatusConflict)
		return
	}
	s.cancelRun = cancel
	s.mu.Unlock()

	boardStr := req.Board
	go func() {
		defer func() {
			s.mu.Lock()
			s.cancelRun = nil
			s.mu.Unlock()
			cancel()
		}()

		_, err := s.session.Run(ctx, boardStr)
		switch {
		case errors.Is(err, pointer.ErrStuckButton):
			// Phantom held button corrupts everything after it; retry the
			// release once before reporting.
			log.Printf("API: Stuck button during run: %v", err)
			if relErr := s.session.ForceRelease(); relErr != nil {
				log.Printf("API: Release retry failed: %v", relErr)
			}
			s.wsMgr.BroadcastError(err.Error())
		case err != nil && !errors.Is(err, context.Canceled):
			log.Printf("API: Run failed: %v", err)
			s.wsMgr.BroadcastError(err.Error())
		default:
			s.wsMgr.BroadcastDone(len(results))
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "running",
		"count":  len(results),
		"words":  results,
	})
}

// handleStop handles POST /api/stop - interrupt the current run between
// words
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	cancel := s.cancelRun
	s.mu.Unlock()

	if cancel == nil {
		http.Error(w, "No run in progress", http.StatusConflict)
		return
	}
	cancel()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "stopping"})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	running, lastBoard := s.session.Status()
	cfg := s.configMgr.Get()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"running":    running,
		"last_board": lastBoard,
		"grid":       fmt.Sprintf("%dx%d", cfg.Grid.Rows, cfg.Grid.Cols),
	})
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
