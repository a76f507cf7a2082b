package testutil

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/takpuzzles/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// Foreign keys are enforced, as in production.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB))
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedPuzzle inserts a puzzle with the given id and solution and returns the id.
func SeedPuzzle(t *testing.T, sqlDB *sql.DB, id int64, rootTPS string, solution ...string) int64 {
	t.Helper()
	_, err := sqlDB.Exec(`
INSERT INTO puzzles (id, root_tps, defender_start_move, size, komi, player_white, player_black, solution, playtak_game_id)
VALUES (?, ?, '', 6, '2', 'white', 'black', ?, ?)
`, id, rootTPS, strings.Join(solution, " "), 1000+id)
	require.NoError(t, err)
	return id
}

// SeedAttempt inserts an attempt at an explicit timestamp.
func SeedAttempt(t *testing.T, sqlDB *sql.DB, puzzleID int64, username string, solved bool, timestamp int64) {
	t.Helper()
	_, err := sqlDB.Exec(`
INSERT INTO puzzle_attempts (puzzle_id, username, solved, solve_time_seconds, solution, timestamp_seconds)
VALUES (?, ?, ?, 30, 'a1', ?)
`, puzzleID, username, solved, timestamp)
	require.NoError(t, err)
}

// SeedPlayer inserts a curated player rating.
func SeedPlayer(t *testing.T, sqlDB *sql.DB, username string, rating float64) {
	t.Helper()
	_, err := sqlDB.Exec(`INSERT INTO players (username, rating) VALUES (?, ?)`, username, rating)
	require.NoError(t, err)
}
