package worker

import (
	"context"
	"sort"
	"sync"

	"github.com/vytor/takpuzzles/internal/glicko"
)

// PuzzleRater is the slice of the rating service the jobs need.
type PuzzleRater interface {
	PuzzleRating(ctx context.Context, puzzleID int64) (glicko.Rating, error)
}

// RatingJob recomputes one puzzle's rating and records it in Report.
type RatingJob struct {
	Rater    PuzzleRater
	PuzzleID int64
	Report   *RatingReport
}

func (j *RatingJob) Name() string { return "rate_puzzle" }

func (j *RatingJob) Run(ctx context.Context) error {
	rating, err := j.Rater.PuzzleRating(ctx, j.PuzzleID)
	if err != nil {
		j.Report.add(RatingLine{PuzzleID: j.PuzzleID, Err: err})
		return err
	}
	j.Report.add(RatingLine{PuzzleID: j.PuzzleID, Rating: rating})
	return nil
}

type RatingLine struct {
	PuzzleID int64
	Rating   glicko.Rating
	Err      error
}

// RatingReport collects results from concurrently running RatingJobs.
type RatingReport struct {
	mu    sync.Mutex
	lines []RatingLine
}

func (r *RatingReport) add(line RatingLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Lines returns the collected results ordered by puzzle id.
func (r *RatingReport) Lines() []RatingLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RatingLine, len(r.lines))
	copy(out, r.lines)
	sort.Slice(out, func(i, k int) bool { return out[i].PuzzleID < out[k].PuzzleID })
	return out
}
