package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/takpuzzles/internal/errors"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/repository"
)

// AttemptService records attempts and reads a player's progress
type AttemptService interface {
	SubmitAttempt(ctx context.Context, puzzleID int64, submission models.AttemptSubmission) error
	FirstAttempts(ctx context.Context, username string) ([]models.Attempt, error)
}

type attemptService struct {
	attempts repository.AttemptRepository
}

// NewAttemptService creates a new AttemptService
func NewAttemptService(attempts repository.AttemptRepository) AttemptService {
	return &attemptService{attempts: attempts}
}

// SubmitAttempt appends the attempt to the ledger. The submitted solution is
// stored as given and is not checked against the puzzle.
func (s *attemptService) SubmitAttempt(ctx context.Context, puzzleID int64, sub models.AttemptSubmission) error {
	log := logger.FromContext(ctx)

	sub.Username = strings.TrimSpace(sub.Username)
	if sub.Username == "" {
		return errors.NewValidationError("username", "must not be empty")
	}
	if sub.SolveTimeSeconds < 0 {
		return errors.NewValidationError("solveTimeSeconds", "must not be negative")
	}

	log.Debug("recording attempt: puzzle_id=%d, username=%s, solved=%t", puzzleID, sub.Username, sub.Solved)
	err := s.attempts.Insert(ctx, models.Attempt{
		PuzzleID:         puzzleID,
		Username:         sub.Username,
		Solved:           sub.Solved,
		SolveTimeSeconds: sub.SolveTimeSeconds,
		Solution:         sub.Solution,
	})
	if stderrors.Is(err, repository.ErrUnknownPuzzle) {
		return errors.NewNotFoundError("puzzle", puzzleID)
	}
	if err != nil {
		log.Error("failed to record attempt: %v", err)
		return errors.NewStorageUnavailableError(err)
	}
	log.Info("attempt recorded: puzzle_id=%d, solved=%t", puzzleID, sub.Solved)
	return nil
}

func (s *attemptService) FirstAttempts(ctx context.Context, username string) ([]models.Attempt, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.NewValidationError("username", "must not be empty")
	}

	attempts, err := s.attempts.FirstAttemptsByPlayer(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Error("failed to read attempts: %v", err)
		return nil, errors.NewStorageUnavailableError(err)
	}
	return attempts, nil
}
