// Package difficulty rates puzzles on the player rating scale and suggests
// how long a puzzle should take.
package difficulty

import (
	"github.com/vytor/takpuzzles/internal/glicko"
	"github.com/vytor/takpuzzles/internal/models"
)

// DefaultRating seeds a puzzle from its solution length: every full move
// pair makes it 350 points harder.
func DefaultRating(solutionLen int) float64 {
	return 1250 + 350*float64(solutionLen/2)
}

// Rate treats the puzzle as a competitor seeded at DefaultRating and plays it
// against every sample in one rating period. A solver who solved the puzzle
// beat it; a solver who failed lost to it.
func Rate(solutionLen int, samples []models.RatingSample, cfg glicko.Config) glicko.Rating {
	puzzle := glicko.NewRating(DefaultRating(solutionLen))

	results := make([]glicko.Result, 0, len(samples))
	for _, s := range samples {
		outcome := glicko.Win
		if s.Solved {
			outcome = glicko.Loss
		}
		results = append(results, glicko.Result{
			Opponent: glicko.NewRating(s.Rating),
			Outcome:  outcome,
		})
	}

	return glicko.RatingPeriod(puzzle, results, cfg)
}
