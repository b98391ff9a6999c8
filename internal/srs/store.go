package srs

import (
	"context"
	"time"

	"github.com/example/greekbot/pkg/models"
)

// Store is the narrow persistence surface the engine needs: append one
// ledger event, reconstruct the latest state per word, and a few bounded
// aggregate scans. Any backend satisfying append + latest-per-key works;
// nothing in this package branches on what is underneath.
type Store interface {
	// AppendReview appends one immutable ledger entry.
	AppendReview(ctx context.Context, rev *models.Review) error

	// LatestState returns the state derived from the word's most recent
	// review, or the virgin state if it has none. Returns ErrWordNotFound
	// for unknown word ids.
	LatestState(ctx context.Context, wordID int64) (CardState, error)

	// ScanStates returns the latest state for every word in the catalog.
	ScanStates(ctx context.Context) ([]CardState, error)

	// RecentQualities returns up to limit quality ratings for a word,
	// most recent first.
	RecentQualities(ctx context.Context, wordID int64, limit int) ([]int, error)

	// RecentlyFailed returns ids of words with at least one failing review,
	// most recently failed first, up to limit.
	RecentlyFailed(ctx context.Context, limit int) ([]int64, error)

	// ReviewCounts returns the total number of reviews and the number of
	// passing reviews (quality >= PassThreshold) since the given time.
	// A zero time means all reviews ever recorded.
	ReviewCounts(ctx context.Context, since time.Time) (total, passed int, err error)

	// MeanQualitySince returns the mean quality of reviews at or after the
	// given time, 0 when there are none.
	MeanQualitySince(ctx context.Context, since time.Time) (float64, error)

	// MeanQualityBefore returns the mean quality of reviews strictly before
	// the given time, 0 when there are none.
	MeanQualityBefore(ctx context.Context, before time.Time) (float64, error)
}
