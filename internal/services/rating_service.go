package services

import (
	"context"
	"math"
	"strings"

	"github.com/vytor/takpuzzles/internal/difficulty"
	"github.com/vytor/takpuzzles/internal/errors"
	"github.com/vytor/takpuzzles/internal/glicko"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/repository"
)

type RatingConfig struct {
	// ExcludedPlayers never contribute to puzzle ratings (test and admin accounts).
	ExcludedPlayers []string
	Glicko          glicko.Config
}

// RatingService derives puzzle ratings and maintains player ratings
type RatingService interface {
	// PuzzleRating recomputes the puzzle's rating from its full attempt history.
	PuzzleRating(ctx context.Context, puzzleID int64) (glicko.Rating, error)
	// PlayerRating returns a NOT_FOUND error for players without a curated rating.
	PlayerRating(ctx context.Context, username string) (*models.PlayerRating, error)
	SetPlayerRating(ctx context.Context, username string, rating float64) error
	ListPlayerRatings(ctx context.Context) ([]models.PlayerRating, error)
}

type ratingService struct {
	puzzles  repository.PuzzleRepository
	attempts repository.AttemptRepository
	players  repository.PlayerRepository
	cfg      RatingConfig
}

// NewRatingService creates a new RatingService
func NewRatingService(puzzles repository.PuzzleRepository, attempts repository.AttemptRepository, players repository.PlayerRepository, cfg RatingConfig) RatingService {
	return &ratingService{
		puzzles:  puzzles,
		attempts: attempts,
		players:  players,
		cfg:      cfg,
	}
}

func (s *ratingService) PuzzleRating(ctx context.Context, puzzleID int64) (glicko.Rating, error) {
	log := logger.FromContext(ctx)
	log.Debug("rating puzzle: id=%d", puzzleID)

	puzzle, err := s.puzzles.Get(ctx, puzzleID)
	if err != nil {
		log.Error("failed to load puzzle: %v", err)
		return glicko.Rating{}, errors.NewStorageUnavailableError(err)
	}
	if puzzle == nil {
		log.Warn("rating requested for unknown puzzle: id=%d", puzzleID)
		return glicko.Rating{}, errors.NewNotFoundError("puzzle", puzzleID)
	}

	samples, err := s.attempts.FirstAttemptsForPuzzle(ctx, puzzleID, s.cfg.ExcludedPlayers)
	if err != nil {
		log.Error("failed to read rating samples: %v", err)
		return glicko.Rating{}, errors.NewStorageUnavailableError(err)
	}

	rating := difficulty.Rate(len(puzzle.Solution), samples, s.cfg.Glicko)
	log.Debug("puzzle rated: id=%d, samples=%d, rating=%.1f, deviation=%.1f",
		puzzleID, len(samples), rating.Rating, rating.Deviation)
	return rating, nil
}

func (s *ratingService) PlayerRating(ctx context.Context, username string) (*models.PlayerRating, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.NewValidationError("username", "must not be empty")
	}

	player, err := s.players.Get(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load player rating: %v", err)
		return nil, errors.NewStorageUnavailableError(err)
	}
	if player == nil {
		return nil, errors.NewNotFoundError("player rating", username)
	}
	return player, nil
}

func (s *ratingService) SetPlayerRating(ctx context.Context, username string, rating float64) error {
	log := logger.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" {
		return errors.NewValidationError("username", "must not be empty")
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) || rating <= 0 {
		return errors.NewValidationError("rating", "must be a positive number")
	}

	if err := s.players.Upsert(ctx, models.PlayerRating{Username: username, Rating: rating}); err != nil {
		log.Error("failed to store player rating: %v", err)
		return errors.NewStorageUnavailableError(err)
	}
	log.Info("player rating set: username=%s, rating=%.1f", username, rating)
	return nil
}

func (s *ratingService) ListPlayerRatings(ctx context.Context) ([]models.PlayerRating, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list player ratings: %v", err)
		return nil, errors.NewStorageUnavailableError(err)
	}
	return players, nil
}
