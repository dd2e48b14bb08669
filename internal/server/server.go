// Package server provides the HTTP REST API for prospect-scout.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/engine"
	"github.com/jonathan/prospect-scout/internal/review"
	"github.com/jonathan/prospect-scout/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	engine      *engine.Engine
	review      *review.Service
	rateLimiter *ratelimit.Limiter
	teamID      string
}

// Config holds server configuration
type Config struct {
	Port   int
	DB     *db.DB
	Engine *engine.Engine
	Review *review.Service
	TeamID string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}

	s := &Server{
		db:     cfg.DB,
		engine: cfg.Engine,
		review: cfg.Review,
		teamID: cfg.TeamID,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for scan runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request multiplexer.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Scan runs
	mux.HandleFunc("POST /runs", s.handleCreateRun)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)

	// Discoveries and triage
	mux.HandleFunc("GET /discoveries", s.handleListDiscoveries)
	mux.HandleFunc("GET /discoveries/{id}", s.handleGetDiscovery)
	mux.HandleFunc("POST /discoveries/{id}/review", s.handleBeginReview)
	mux.HandleFunc("POST /discoveries/{id}/promote", s.handlePromote)
	mux.HandleFunc("POST /discoveries/{id}/dismiss", s.handleDismiss)

	// Prospects and review feedback
	mux.HandleFunc("GET /prospects", s.handleListProspects)
	mux.HandleFunc("GET /prospects/{id}", s.handleGetProspect)
	mux.HandleFunc("GET /prospects/{id}/paths", s.handleGetProspectPaths)
	mux.HandleFunc("POST /prospects/{id}/feedback", s.handleSubmitFeedback)
	mux.HandleFunc("POST /prospects/{id}/feedback/undo", s.handleUndoFeedback)

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service-layer error onto an HTTP response.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; an X-Forwarded-For header is only
// trustworthy behind a known proxy, so it is deliberately ignored here.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
