package repository

import (
	"context"

	"github.com/vytor/takpuzzles/internal/models"
)

// PuzzleRepository handles puzzle data access
type PuzzleRepository interface {
	// Get returns nil, nil when the puzzle does not exist.
	Get(ctx context.Context, id int64) (*models.Puzzle, error)
	Insert(ctx context.Context, puzzle models.Puzzle) (int64, error)
	ListIDs(ctx context.Context) ([]int64, error)
	// UnattemptedIDs lists puzzles the player never attempted, solved or not.
	// An upperBound of 0 means no bound; otherwise only ids below it qualify.
	UnattemptedIDs(ctx context.Context, username string, upperBound int64) ([]int64, error)
}

// AttemptRepository is the append-only attempt ledger.
type AttemptRepository interface {
	// Insert returns ErrUnknownPuzzle when the puzzle id does not exist.
	Insert(ctx context.Context, attempt models.Attempt) error
	// FirstAttemptsByPlayer returns the earliest attempt per puzzle.
	FirstAttemptsByPlayer(ctx context.Context, username string) ([]models.Attempt, error)
	// FirstAttemptsForPuzzle returns the earliest attempt per rated player,
	// skipping the excluded usernames.
	FirstAttemptsForPuzzle(ctx context.Context, puzzleID int64, excluded []string) ([]models.RatingSample, error)
}

// PlayerRepository handles the curated player rating table
type PlayerRepository interface {
	Get(ctx context.Context, username string) (*models.PlayerRating, error)
	List(ctx context.Context) ([]models.PlayerRating, error)
	Upsert(ctx context.Context, player models.PlayerRating) error
}
