package repository

import "errors"

// ErrUnknownPuzzle is returned when an attempt references a missing puzzle.
var ErrUnknownPuzzle = errors.New("unknown puzzle")
