package services

import (
	"context"
	"strings"

	"github.com/vytor/takpuzzles/internal/difficulty"
	"github.com/vytor/takpuzzles/internal/errors"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/random"
	"github.com/vytor/takpuzzles/internal/repository"
)

// SelectionConfig controls which puzzles a player is served.
type SelectionConfig struct {
	// OnboardingPuzzleIDs are served first, in order, until the player has
	// attempted each of them once.
	OnboardingPuzzleIDs []int64
	// CandidatePoolUpperBound limits random serving to ids below it; 0 serves
	// from the whole catalog.
	CandidatePoolUpperBound int64
}

// PuzzleService handles puzzle selection and the puzzle catalog
type PuzzleService interface {
	NextPuzzle(ctx context.Context, username string) (*models.Puzzle, error)
	AddPuzzle(ctx context.Context, puzzle models.Puzzle) (int64, error)
	ListPuzzleIDs(ctx context.Context) ([]int64, error)
}

type puzzleService struct {
	puzzles  repository.PuzzleRepository
	attempts repository.AttemptRepository
	cfg      SelectionConfig
	rand     random.Source
}

// NewPuzzleService creates a new PuzzleService
func NewPuzzleService(puzzles repository.PuzzleRepository, attempts repository.AttemptRepository, cfg SelectionConfig, src random.Source) PuzzleService {
	if src == nil {
		src = random.Default()
	}
	return &puzzleService{
		puzzles:  puzzles,
		attempts: attempts,
		cfg:      cfg,
		rand:     src,
	}
}

// NextPuzzle serves the first onboarding puzzle the player has not attempted,
// then a random never-attempted puzzle from the candidate pool. Selection is
// derived from the ledger alone, so repeated calls without a new attempt draw
// from the same eligible set.
func (s *puzzleService) NextPuzzle(ctx context.Context, username string) (*models.Puzzle, error) {
	log := logger.FromContext(ctx)
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.NewValidationError("username", "must not be empty")
	}
	log.Debug("selecting next puzzle: username=%s", username)

	attempts, err := s.attempts.FirstAttemptsByPlayer(ctx, username)
	if err != nil {
		log.Error("failed to read attempts: %v", err)
		return nil, errors.NewStorageUnavailableError(err)
	}
	attempted := make(map[int64]bool, len(attempts))
	for _, a := range attempts {
		attempted[a.PuzzleID] = true
	}

	for _, id := range s.cfg.OnboardingPuzzleIDs {
		if attempted[id] {
			continue
		}
		puzzle, err := s.puzzles.Get(ctx, id)
		if err != nil {
			log.Error("failed to load onboarding puzzle %d: %v", id, err)
			return nil, errors.NewStorageUnavailableError(err)
		}
		if puzzle == nil {
			log.Warn("onboarding puzzle %d does not exist, skipping", id)
			continue
		}
		log.Debug("serving onboarding puzzle: id=%d", id)
		return s.serve(puzzle), nil
	}

	candidates, err := s.puzzles.UnattemptedIDs(ctx, username, s.cfg.CandidatePoolUpperBound)
	if err != nil {
		log.Error("failed to list candidate puzzles: %v", err)
		return nil, errors.NewStorageUnavailableError(err)
	}
	if len(candidates) == 0 {
		log.Debug("candidate pool exhausted: username=%s", username)
		return nil, errors.NewNotFoundError("unattempted puzzle for player", username)
	}

	id := candidates[s.rand.IntN(len(candidates))]
	puzzle, err := s.puzzles.Get(ctx, id)
	if err != nil {
		log.Error("failed to load puzzle %d: %v", id, err)
		return nil, errors.NewStorageUnavailableError(err)
	}
	if puzzle == nil {
		return nil, errors.NewNotFoundError("puzzle", id)
	}
	log.Debug("serving random puzzle: id=%d, candidates=%d", id, len(candidates))
	return s.serve(puzzle), nil
}

// serve stamps a freshly drawn target time on the puzzle.
func (s *puzzleService) serve(p *models.Puzzle) *models.Puzzle {
	p.TargetTimeSeconds = difficulty.TargetTime(p.RootTPS, p.Solution, s.rand)
	return p
}

func (s *puzzleService) AddPuzzle(ctx context.Context, puzzle models.Puzzle) (int64, error) {
	log := logger.FromContext(ctx)

	if len(puzzle.Solution) == 0 {
		return 0, errors.NewValidationError("solution", "must contain at least one move")
	}
	if puzzle.Size < 3 || puzzle.Size > 8 {
		return 0, errors.NewValidationError("size", "must be between 3 and 8")
	}
	if strings.TrimSpace(puzzle.RootTPS) == "" {
		return 0, errors.NewValidationError("rootTPS", "must not be empty")
	}

	id, err := s.puzzles.Insert(ctx, puzzle)
	if err != nil {
		log.Error("failed to insert puzzle: %v", err)
		return 0, errors.NewStorageUnavailableError(err)
	}
	log.Info("puzzle added: id=%d, moves=%d", id, len(puzzle.Solution))
	return id, nil
}

func (s *puzzleService) ListPuzzleIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.puzzles.ListIDs(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list puzzles: %v", err)
		return nil, errors.NewStorageUnavailableError(err)
	}
	return ids, nil
}
