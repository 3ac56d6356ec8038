// Package api exposes the challenge pipeline over HTTP: document
// upload, topic listing, batch generation with progress polling, and
// attempt submission.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/analyzer"
	"github.com/quizforge/quizforge/internal/attempt"
	"github.com/quizforge/quizforge/internal/domain"
	"github.com/quizforge/quizforge/internal/job"
	"github.com/quizforge/quizforge/internal/storage"
)

// Server is the quizforge HTTP server
type Server struct {
	server *http.Server
	router *http.ServeMux

	store    storage.Store
	analyzer *analyzer.Analyzer
	jobs     *job.Service
	attempts *attempt.Tracker
	now      func() time.Time
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Bind     string
	Port     int
	Store    storage.Store
	Analyzer *analyzer.Analyzer
	Jobs     *job.Service
	Attempts *attempt.Tracker
}

// NewServer creates the HTTP server with its middleware chain
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		router:   http.NewServeMux(),
		store:    cfg.Store,
		analyzer: cfg.Analyzer,
		jobs:     cfg.Jobs,
		attempts: cfg.Attempts,
		now:      time.Now,
	}
	if s.analyzer == nil {
		s.analyzer = analyzer.NewAnalyzer()
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	handler := withRecovery(withRequestLog(withRequestID(s.router)))
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)

	// Documents
	s.router.HandleFunc("POST /v1/documents", s.handleUploadDocument)
	s.router.HandleFunc("GET /v1/documents/{id}", s.handleGetDocument)
	s.router.HandleFunc("GET /v1/documents/{id}/topics", s.handleListTopics)

	// Challenge generation
	s.router.HandleFunc("POST /v1/documents/{id}/challenges", s.handleStartGeneration)
	s.router.HandleFunc("GET /v1/documents/{id}/progress", s.handleGetProgress)
	s.router.HandleFunc("GET /v1/documents/{id}/challenges", s.handleListChallenges)

	// Attempts
	s.router.HandleFunc("POST /v1/challenges/{id}/attempts", s.handleSubmitAttempt)
	s.router.HandleFunc("GET /v1/challenges/{id}/attempt", s.handleGetAttempt)
	s.router.HandleFunc("GET /v1/challenges/{id}/hint", s.handleGetHint)
}

// Handler returns the full middleware-wrapped handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting quizforge server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server after draining in-flight
// batches.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// Document handlers

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Text) < 50 {
		s.jsonError(w, http.StatusBadRequest, "document text is empty or too short", nil)
		return
	}

	analysis := s.analyzer.Analyze(req.Text)
	doc := &domain.Document{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Text:       req.Text,
		Topics:     analysis.Topics,
		Language:   analysis.Language,
		UploadedAt: s.now(),
	}
	if err := s.store.PutDocument(r.Context(), doc); err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to store document", err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"id":     doc.ID,
		"name":   doc.Name,
		"topics": doc.Topics,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			s.jsonError(w, http.StatusNotFound, "document not found", nil)
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to get document", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			s.jsonError(w, http.StatusNotFound, "document not found", nil)
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to get document", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"document_id": doc.ID,
		"topics":      doc.Topics,
	})
}

// Generation handlers

func (s *Server) handleStartGeneration(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	var req struct {
		Topics []struct {
			Topic      string   `json:"topic"`
			Difficulty string   `json:"difficulty"`
			Types      []string `json:"types,omitempty"`
		} `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	selections := make([]job.Selection, 0, len(req.Topics))
	for _, t := range req.Topics {
		sel := job.Selection{
			Topic:      t.Topic,
			Difficulty: domain.Difficulty(t.Difficulty),
		}
		for _, ct := range t.Types {
			sel.Types = append(sel.Types, domain.ChallengeType(ct))
		}
		selections = append(selections, sel)
	}

	if err := s.jobs.StartBatch(r.Context(), documentID, selections); err != nil {
		switch {
		case errors.Is(err, domain.ErrNoTopicsSelected):
			s.jsonError(w, http.StatusBadRequest, "no topics selected", nil)
		case errors.Is(err, domain.ErrDocumentNotFound):
			s.jsonError(w, http.StatusNotFound, "document not found", nil)
		default:
			s.jsonError(w, http.StatusInternalServerError, "failed to start generation", err)
		}
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("Started generating challenges for %d topics", len(selections)),
		"document_id": documentID,
	})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.jobs.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			s.jsonResponse(w, http.StatusOK, map[string]interface{}{
				"status":  "not_found",
				"percent": 0,
				"message": "No processing found for this document",
			})
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to get progress", err)
		return
	}

	response := map[string]interface{}{
		"status":    progress.Status,
		"percent":   progress.Percent,
		"message":   progress.Message,
		"timestamp": progress.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if len(progress.Topics) > 0 {
		response["topics"] = progress.Topics
	}
	if len(progress.ChallengeIDs) > 0 {
		response["challenge_ids"] = progress.ChallengeIDs
	}
	s.jsonResponse(w, http.StatusOK, response)
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := r.PathValue("id")

	challenges, err := s.store.ListChallenges(ctx, documentID)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to list challenges", err)
		return
	}
	if len(challenges) == 0 {
		s.jsonError(w, http.StatusNotFound, "challenges not found or still generating", nil)
		return
	}

	type challengeWithState struct {
		*domain.Challenge
		State *domain.AttemptState `json:"state"`
	}
	result := make([]challengeWithState, 0, len(challenges))
	for _, c := range challenges {
		state, err := s.attempts.State(ctx, c.ID)
		if err != nil {
			s.jsonError(w, http.StatusInternalServerError, "failed to load attempt state", err)
			return
		}
		result = append(result, challengeWithState{Challenge: c, State: state})
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"challenges": result,
		"count":      len(result),
	})
}

// Attempt handlers

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	challengeID := r.PathValue("id")

	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	challenge, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) {
			s.jsonError(w, http.StatusNotFound, "challenge not found", nil)
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}

	result, err := s.attempts.Submit(ctx, challenge, req.Answer)
	if err != nil {
		if errors.Is(err, domain.ErrAttemptsExceeded) {
			s.jsonResponse(w, http.StatusOK, map[string]interface{}{
				"success":      false,
				"message":      "Maximum attempts reached",
				"attempts":     result.State.Attempts,
				"max_attempts": result.State.MaxAttempts,
			})
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to submit attempt", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"correct":      result.Evaluation.Correct(),
		"score":        result.Evaluation.Score,
		"feedback":     result.Evaluation.Feedback,
		"attempts":     result.State.Attempts,
		"max_attempts": result.State.MaxAttempts,
		"status":       result.State.Status,
	})
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	state, err := s.attempts.State(r.Context(), r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to load attempt state", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleGetHint(w http.ResponseWriter, r *http.Request) {
	challenge, err := s.store.GetChallenge(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) {
			s.jsonError(w, http.StatusNotFound, "challenge not found", nil)
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to load challenge", err)
		return
	}

	hint := challenge.Hint
	if hint == "" {
		hint = fmt.Sprintf("Think about the key concepts in %s.", challenge.Topic)
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"hint":    hint,
	})
}

// Helper methods

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
