package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/repository"
)

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new AttemptRepository implementation
func NewAttemptRepository(db *sql.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Insert(ctx context.Context, a models.Attempt) error {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("inserting attempt: puzzle_id=%d, username=%s, solved=%t", a.PuzzleID, a.Username, a.Solved)

	q := sqlBuilder.Insert("puzzle_attempts").
		Columns("puzzle_id", "username", "solved", "solve_time_seconds", "solution")
	values := []any{a.PuzzleID, a.Username, a.Solved, a.SolveTimeSeconds, joinSolution(a.Solution)}
	if a.TimestampSeconds > 0 {
		// Imported history keeps its original time; live submissions use the column default.
		q = q.Columns("timestamp_seconds")
		values = append(values, a.TimestampSeconds)
	}

	query, args, err := q.Values(values...).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			log.Debug("attempt references unknown puzzle: puzzle_id=%d", a.PuzzleID)
			return repository.ErrUnknownPuzzle
		}
		log.Error("failed to insert attempt: %v", err)
		return err
	}
	return nil
}

func (r *attemptRepository) FirstAttemptsByPlayer(ctx context.Context, username string) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("fetching first attempts: username=%s", username)

	query, args, err := sqlBuilder.
		Select("puzzle_id", "username", "solved", "solve_time_seconds", "solution", "timestamp_seconds").
		FromSelect(rankedAttempts(squirrel.Eq{"username": username}), "ranked").
		Where(squirrel.Eq{"rn": 1}).
		OrderBy("puzzle_id").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query first attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	attempts := []models.Attempt{}
	for rows.Next() {
		var a models.Attempt
		var solution string
		if err := rows.Scan(&a.PuzzleID, &a.Username, &a.Solved, &a.SolveTimeSeconds, &solution, &a.TimestampSeconds); err != nil {
			log.Error("failed to scan attempt row: %v", err)
			return nil, err
		}
		a.Solution = splitSolution(solution)
		attempts = append(attempts, a)
	}
	log.Debug("found %d first attempts", len(attempts))
	return attempts, rows.Err()
}

func (r *attemptRepository) FirstAttemptsForPuzzle(ctx context.Context, puzzleID int64, excluded []string) ([]models.RatingSample, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("fetching rating samples: puzzle_id=%d, excluded=%v", puzzleID, excluded)

	filters := []squirrel.Sqlizer{squirrel.Eq{"puzzle_id": puzzleID}}
	if len(excluded) > 0 {
		filters = append(filters, squirrel.NotEq{"username": excluded})
	}

	query, args, err := sqlBuilder.
		Select("ranked.username", "ranked.solved", "players.rating").
		FromSelect(rankedAttempts(filters...), "ranked").
		Join("players ON players.username = ranked.username").
		Where(squirrel.Eq{"ranked.rn": 1}).
		OrderBy("ranked.username").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query rating samples: %v", err)
		return nil, err
	}
	defer rows.Close()

	samples := []models.RatingSample{}
	for rows.Next() {
		var s models.RatingSample
		if err := rows.Scan(&s.Username, &s.Solved, &s.Rating); err != nil {
			log.Error("failed to scan rating sample: %v", err)
			return nil, err
		}
		samples = append(samples, s)
	}
	log.Debug("found %d rating samples", len(samples))
	return samples, rows.Err()
}
