// Package srs implements the SM-2 spaced repetition algorithm with learning
// steps, leech detection, and overdue decay.
//
// Quality scale (0-5):
//
//	0 - no recall at all
//	1 - wrong, but recognised after seeing the answer
//	2 - wrong, but the answer felt familiar
//	3 - correct, but with difficulty
//	4 - correct, with some hesitation
//	5 - perfect recall
package srs

import (
	"fmt"
	"time"

	"github.com/example/greekbot/pkg/models"
)

const (
	// DefaultEase is the ease factor a word starts with.
	DefaultEase = 2.5
	// MinEase is the hard floor for the ease factor. Without it chronically
	// failed words would collapse into ever-shrinking intervals.
	MinEase = 1.3
	// LearningStep is the first post-success interval in days (~20 minutes),
	// so a new word resurfaces on the next scheduling cycle instead of
	// waiting a full day like classic SM-2.
	LearningStep = 0.014
	// PassThreshold is the lowest quality that counts as a successful recall.
	PassThreshold = 3
	// LeechThreshold is how many consecutive failures flag a word as a leech.
	LeechThreshold = 4
)

// CardState is the scheduling state of one word, derived from the most
// recent entry in the review ledger. A word with no reviews has the virgin
// state: default ease, zero interval, zero repetitions, nil LastReview.
type CardState struct {
	WordID     int64
	Greek      string
	English    string
	EaseFactor float64
	Interval   float64 // days
	Repetition int
	LastReview *time.Time
	Tags       models.Tags
}

// NewCardState returns the virgin state for a catalog word.
func NewCardState(w models.Word) CardState {
	return CardState{
		WordID:     w.ID,
		Greek:      w.Greek,
		English:    w.English,
		EaseFactor: DefaultEase,
		Tags:       w.Tags,
	}
}

// DueAt returns when the card next comes due. A never-reviewed card reports
// the zero time and is therefore always due.
func (c CardState) DueAt() time.Time {
	if c.LastReview == nil {
		return time.Time{}
	}
	return c.LastReview.Add(daysToDuration(c.Interval))
}

// IsDue reports whether the card should be presented at the given time.
func (c CardState) IsDue(now time.Time) bool {
	if c.LastReview == nil {
		return true
	}
	return !now.Before(c.DueAt())
}

// OverdueFactor quantifies lateness: 1.0 means on time (or never reviewed),
// values above 1 mean the card is past due by that multiple of its interval.
func (c CardState) OverdueFactor(now time.Time) float64 {
	if c.LastReview == nil || c.Interval <= 0 {
		return 1.0
	}
	daysSince := now.Sub(*c.LastReview).Hours() / 24
	if f := daysSince / c.Interval; f > 1.0 {
		return f
	}
	return 1.0
}

// IsLearning reports whether the card is still in the learning phase, i.e.
// has not yet graduated past the 1-day step.
func (c CardState) IsLearning() bool {
	return c.Repetition < 2
}

// NextState computes the SM-2 state transition for a quality rating observed
// at the given time. It is pure: the input state is never mutated and no I/O
// happens here. The caller persists the result as a new ledger entry.
func NextState(state CardState, quality int, now time.Time) (CardState, error) {
	if quality < 0 || quality > 5 {
		return CardState{}, fmt.Errorf("%w: got %d", ErrInvalidRating, quality)
	}

	// Standard SM-2 ease adjustment, applied on pass and fail alike.
	ease := state.EaseFactor + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
	if ease < MinEase {
		ease = MinEase
	}

	reviewedAt := now
	next := state
	next.EaseFactor = ease
	next.LastReview = &reviewedAt

	if quality < PassThreshold {
		// Full reset on failure: the word behaves like a new one on its
		// next success.
		next.Interval = 0
		next.Repetition = 0
		return next, nil
	}

	var interval float64
	switch state.Repetition {
	case 0:
		interval = LearningStep
	case 1:
		interval = 1.0 // graduate out of the learning phase
	case 2:
		interval = 6.0
	default:
		interval = state.Interval * ease
	}

	// Overdue decay: a single success after long neglect (3x+ the scheduled
	// interval) is weak evidence, so cap the growth instead of trusting the
	// full multiplicative jump.
	if state.Interval > 1.0 && state.LastReview != nil {
		daysSince := now.Sub(*state.LastReview).Hours() / 24
		if daysSince/state.Interval > 3.0 {
			if capped := state.Interval * 1.2; interval > capped {
				interval = capped
			}
		}
	}

	next.Interval = interval
	next.Repetition = state.Repetition + 1
	return next, nil
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}
