package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/repository"
)

type puzzleRepository struct {
	db *sql.DB
}

// NewPuzzleRepository creates a new PuzzleRepository implementation
func NewPuzzleRepository(db *sql.DB) repository.PuzzleRepository {
	return &puzzleRepository{db: db}
}

func (r *puzzleRepository) Get(ctx context.Context, id int64) (*models.Puzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("getting puzzle: id=%d", id)

	var p models.Puzzle
	var solution string
	err := r.db.QueryRowContext(ctx, `
SELECT id, size, komi, root_tps, defender_start_move, solution, target_time_seconds,
       player_white, player_black, playtak_game_id
FROM puzzles
WHERE id = ?
`, id).Scan(&p.ID, &p.Size, &p.Komi, &p.RootTPS, &p.DefenderStartMove, &solution, &p.TargetTimeSeconds,
		&p.PlayerWhite, &p.PlayerBlack, &p.PlaytakGameID)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("puzzle not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get puzzle: %v", err)
		return nil, err
	}
	p.Solution = splitSolution(solution)
	return &p, nil
}

func (r *puzzleRepository) Insert(ctx context.Context, p models.Puzzle) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("inserting puzzle: playtak_game_id=%d, moves=%d", p.PlaytakGameID, len(p.Solution))

	query, args, err := sqlBuilder.Insert("puzzles").
		Columns("size", "komi", "root_tps", "defender_start_move", "solution", "target_time_seconds",
			"player_white", "player_black", "playtak_game_id").
		Values(p.Size, p.Komi, p.RootTPS, p.DefenderStartMove, joinSolution(p.Solution), p.TargetTimeSeconds,
			p.PlayerWhite, p.PlayerBlack, p.PlaytakGameID).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert puzzle: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get puzzle id: %v", err)
		return 0, err
	}
	log.Debug("puzzle inserted: id=%d", id)
	return id, nil
}

func (r *puzzleRepository) ListIDs(ctx context.Context) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")

	query, args, err := sqlBuilder.Select("id").From("puzzles").OrderBy("id").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	return r.queryIDs(ctx, query, args...)
}

func (r *puzzleRepository) UnattemptedIDs(ctx context.Context, username string, upperBound int64) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("listing unattempted puzzles: username=%s, upper_bound=%d", username, upperBound)

	q := sqlBuilder.Select("p.id").
		From("puzzles p").
		LeftJoin("puzzle_attempts a ON a.puzzle_id = p.id AND a.username = ?", username).
		Where(squirrel.Eq{"a.puzzle_id": nil}).
		OrderBy("p.id")
	if upperBound > 0 {
		q = q.Where(squirrel.Lt{"p.id": upperBound})
	}

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	ids, err := r.queryIDs(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d unattempted puzzles", len(ids))
	return ids, nil
}

func (r *puzzleRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query puzzle ids: %v", err)
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan puzzle id: %v", err)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
