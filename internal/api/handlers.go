package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/takpuzzles/internal/errors"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	PuzzleService  services.PuzzleService
	AttemptService services.AttemptService
	RatingService  services.RatingService
	DB             Pinger
	AllowedOrigins []string
}

const maxBodyBytes = 1 << 20

func (s *Server) handleNextPuzzle(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	logger.FromContext(r.Context()).Debug("next puzzle requested: username=%s", username)

	puzzle, err := s.PuzzleService.NextPuzzle(r.Context(), username)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, puzzle)
}

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := puzzleIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var submission models.AttemptSubmission
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid attempt body: "+err.Error()))
		return
	}

	if err := s.AttemptService.SubmitAttempt(r.Context(), id, submission); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handlePuzzleRating(w http.ResponseWriter, r *http.Request) {
	id, err := puzzleIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	rating, err := s.RatingService.PuzzleRating(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rating.Rating)
}

func (s *Server) handlePlayerAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.AttemptService.FirstAttempts(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, attempts)
}
