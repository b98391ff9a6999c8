package srs

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/example/greekbot/pkg/models"
)

// failureLookback bounds how far back consecutive-failure counting scans.
const failureLookback = 10

// ExcludeFunc decides whether a word is left out of scheduling entirely.
// The catalog owns the tag semantics; the engine only evaluates the result.
type ExcludeFunc func(CardState) bool

// Engine ties the pure SM-2 transition to the review ledger: it records
// reviews, answers due-set queries, and computes retention statistics.
type Engine struct {
	store   Store
	log     *zap.Logger
	exclude ExcludeFunc
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithExclude replaces the default manual-skip exclusion predicate.
func WithExclude(f ExcludeFunc) Option {
	return func(e *Engine) { e.exclude = f }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine over the given store.
func NewEngine(store Store, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   logger.Named("srs"),
		exclude: func(c CardState) bool {
			return c.Tags.ManualSkip()
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordReview applies a quality rating to a word: it loads the latest
// state, computes the transition, appends one ledger entry, and returns the
// new state.
func (e *Engine) RecordReview(ctx context.Context, wordID int64, quality int) (CardState, error) {
	state, err := e.store.LatestState(ctx, wordID)
	if err != nil {
		return CardState{}, err
	}

	next, err := NextState(state, quality, e.now())
	if err != nil {
		return CardState{}, err
	}

	rev := &models.Review{
		WordID:     wordID,
		ReviewedAt: *next.LastReview,
		Quality:    quality,
		EaseFactor: next.EaseFactor,
		Interval:   next.Interval,
		Repetition: next.Repetition,
	}
	if err := e.store.AppendReview(ctx, rev); err != nil {
		return CardState{}, fmt.Errorf("failed to append review: %w", err)
	}

	e.log.Debug("review recorded",
		zap.Int64("word_id", wordID),
		zap.Int("quality", quality),
		zap.Float64("interval", next.Interval),
		zap.Int("repetition", next.Repetition))
	return next, nil
}

// DueCards returns the due set, up to limit (limit <= 0 means no cap).
// Words with at least one prior review come first, oldest-reviewed first, so
// the most overdue resurface soonest. Brand-new words follow in randomized
// order so the catalog doesn't always replay the same prefix. Excluded words
// never appear.
func (e *Engine) DueCards(ctx context.Context, limit int) ([]CardState, error) {
	states, err := e.store.ScanStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan card states: %w", err)
	}

	now := e.now()
	var reviewed, fresh []CardState
	for _, s := range states {
		if e.exclude(s) || !s.IsDue(now) {
			continue
		}
		if s.LastReview == nil {
			fresh = append(fresh, s)
		} else {
			reviewed = append(reviewed, s)
		}
	}

	sort.Slice(reviewed, func(i, j int) bool {
		return reviewed[i].LastReview.Before(*reviewed[j].LastReview)
	})
	rand.Shuffle(len(fresh), func(i, j int) {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	})

	due := append(reviewed, fresh...)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// ConsecutiveFailures counts failing reviews from the most recent backwards,
// stopping at the first success. The scan is bounded to the last
// failureLookback events for cost control.
func (e *Engine) ConsecutiveFailures(ctx context.Context, wordID int64) (int, error) {
	qualities, err := e.store.RecentQualities(ctx, wordID, failureLookback)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, q := range qualities {
		if q >= PassThreshold {
			break
		}
		count++
	}
	return count, nil
}

// IsLeech reports whether a word has failed LeechThreshold or more times in
// a row.
func (e *Engine) IsLeech(ctx context.Context, wordID int64) (bool, error) {
	failures, err := e.ConsecutiveFailures(ctx, wordID)
	if err != nil {
		return false, err
	}
	return failures >= LeechThreshold, nil
}

// Leeches returns up to limit chronically failed words so callers can give
// them special handling (re-teaching, dropping). The candidate pool is
// bounded: only words with a recent failing review are considered.
func (e *Engine) Leeches(ctx context.Context, limit int) ([]CardState, error) {
	candidates, err := e.store.RecentlyFailed(ctx, limit*3)
	if err != nil {
		return nil, fmt.Errorf("failed to list failing words: %w", err)
	}

	var leeches []CardState
	for _, wordID := range candidates {
		leech, err := e.IsLeech(ctx, wordID)
		if err != nil {
			return nil, err
		}
		if !leech {
			continue
		}
		state, err := e.store.LatestState(ctx, wordID)
		if err != nil {
			return nil, err
		}
		leeches = append(leeches, state)
		if len(leeches) >= limit {
			break
		}
	}
	return leeches, nil
}
