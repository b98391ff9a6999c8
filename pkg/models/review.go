package models

import "time"

// Review is one entry in the append-only review ledger. Each row stores the
// quality rating the learner gave plus the SM-2 state that resulted from it,
// so the current state of a word is simply its most recent review.
type Review struct {
	ID         int64     `json:"id" db:"id"`
	WordID     int64     `json:"word_id" db:"word_id"`
	ReviewedAt time.Time `json:"reviewed_at" db:"reviewed_at"`
	Quality    int       `json:"quality" db:"quality"` // 0-5 recall rating
	EaseFactor float64   `json:"ease_factor" db:"ease_factor"`
	Interval   float64   `json:"interval" db:"interval"` // days until next due
	Repetition int       `json:"repetition" db:"repetition"`
}
