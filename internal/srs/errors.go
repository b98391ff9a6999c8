package srs

import "errors"

var (
	// ErrInvalidRating is returned when a quality rating falls outside 0-5.
	// The ledger is never touched in that case.
	ErrInvalidRating = errors.New("quality rating must be between 0 and 5")

	// ErrWordNotFound is returned when an operation references a word id
	// with no catalog entry.
	ErrWordNotFound = errors.New("word not found")
)
