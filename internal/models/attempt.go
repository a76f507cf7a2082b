package models

// Attempt is one submission of a solution to a puzzle. Attempts are never
// updated or deleted.
type Attempt struct {
	PuzzleID         int64    `json:"puzzleId"`
	Username         string   `json:"username"`
	Solved           bool     `json:"solved"`
	SolveTimeSeconds int      `json:"solveTimeSeconds"`
	Solution         []string `json:"solution"`
	TimestampSeconds int64    `json:"timestampSeconds"`
}

// AttemptSubmission is the body of POST /puzzles/{id}.
type AttemptSubmission struct {
	Username         string   `json:"username"`
	Solved           bool     `json:"solved"`
	Solution         []string `json:"solution"`
	SolveTimeSeconds int      `json:"solveTimeSeconds"`
}
