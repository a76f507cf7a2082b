package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/takpuzzles/internal/logger"
	"github.com/vytor/takpuzzles/internal/models"
	"github.com/vytor/takpuzzles/internal/repository"
)

type playerRepository struct {
	db *sql.DB
}

// NewPlayerRepository creates a new PlayerRepository implementation
func NewPlayerRepository(db *sql.DB) repository.PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Get(ctx context.Context, username string) (*models.PlayerRating, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("getting player rating: username=%s", username)

	var p models.PlayerRating
	err := r.db.QueryRowContext(ctx, `SELECT username, rating FROM players WHERE username = ?`, username).
		Scan(&p.Username, &p.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get player rating: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *playerRepository) List(ctx context.Context) ([]models.PlayerRating, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT username, rating FROM players ORDER BY rating DESC, username`)
	if err != nil {
		log.Error("failed to list players: %v", err)
		return nil, err
	}
	defer rows.Close()

	var players []models.PlayerRating
	for rows.Next() {
		var p models.PlayerRating
		if err := rows.Scan(&p.Username, &p.Rating); err != nil {
			log.Error("failed to scan player row: %v", err)
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *playerRepository) Upsert(ctx context.Context, p models.PlayerRating) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("upserting player rating: username=%s, rating=%.1f", p.Username, p.Rating)

	query, args, err := sqlBuilder.Insert("players").
		Columns("username", "rating").
		Values(p.Username, p.Rating).
		Suffix("ON CONFLICT(username) DO UPDATE SET rating = excluded.rating").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert player rating: %v", err)
		return err
	}
	return nil
}
