package sqlite

import (
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	sqlite3 "github.com/mattn/go-sqlite3"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// rankedAttempts numbers each player's attempts on each puzzle from the
// earliest; rn = 1 is the authoritative first attempt. Equal timestamps fall
// back to write order.
func rankedAttempts(where ...squirrel.Sqlizer) squirrel.SelectBuilder {
	q := sqlBuilder.Select(
		"id", "puzzle_id", "username", "solved", "solve_time_seconds", "solution", "timestamp_seconds",
		"ROW_NUMBER() OVER (PARTITION BY username, puzzle_id ORDER BY timestamp_seconds ASC, id ASC) AS rn",
	).From("puzzle_attempts")
	for _, w := range where {
		q = q.Where(w)
	}
	return q
}

func joinSolution(moves []string) string {
	return strings.Join(moves, " ")
}

func splitSolution(s string) []string {
	return strings.Fields(s)
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
