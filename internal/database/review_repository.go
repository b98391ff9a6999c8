package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/greekbot/internal/srs"
	"github.com/example/greekbot/pkg/models"
)

// ReviewRepository handles the append-only review ledger and implements
// srs.Store. All queries use $N placeholders and Go-computed time bounds so
// the same SQL runs against SQLite and PostgreSQL.
type ReviewRepository struct{}

// NewReviewRepository creates a new repository instance
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{}
}

var _ srs.Store = (*ReviewRepository)(nil)

// latestStateQuery joins each word with its most recent review, falling back
// to the virgin defaults for words that were never reviewed.
const latestStateQuery = `
	SELECT w.id, w.greek, w.english, w.tags,
	       COALESCE(r.ease_factor, $1) AS ease_factor,
	       COALESCE(r.interval, 0.0) AS interval,
	       COALESCE(r.repetition, 0) AS repetition,
	       r.reviewed_at AS last_review
	FROM words w
	LEFT JOIN (
		SELECT word_id, ease_factor, interval, repetition, reviewed_at,
		       ROW_NUMBER() OVER (PARTITION BY word_id ORDER BY reviewed_at DESC, id DESC) AS rn
		FROM reviews
	) r ON r.word_id = w.id AND r.rn = 1
`

type cardRow struct {
	ID         int64       `db:"id"`
	Greek      string      `db:"greek"`
	English    string      `db:"english"`
	Tags       models.Tags `db:"tags"`
	EaseFactor float64     `db:"ease_factor"`
	Interval   float64     `db:"interval"`
	Repetition int         `db:"repetition"`
	LastReview NullTime    `db:"last_review"`
}

func (r cardRow) toState() srs.CardState {
	state := srs.CardState{
		WordID:     r.ID,
		Greek:      r.Greek,
		English:    r.English,
		EaseFactor: r.EaseFactor,
		Interval:   r.Interval,
		Repetition: r.Repetition,
		Tags:       r.Tags,
	}
	if r.LastReview.Valid {
		t := r.LastReview.Time
		state.LastReview = &t
	}
	return state
}

// AppendReview appends one ledger entry. Entries are never updated or
// deleted afterwards.
func (r *ReviewRepository) AppendReview(ctx context.Context, rev *models.Review) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO reviews (word_id, reviewed_at, quality, ease_factor, interval, repetition)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rev.WordID, rev.ReviewedAt, rev.Quality, rev.EaseFactor, rev.Interval, rev.Repetition,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// LatestState returns the current card state for one word.
func (r *ReviewRepository) LatestState(ctx context.Context, wordID int64) (srs.CardState, error) {
	var row cardRow
	err := DB.GetContext(ctx, &row, latestStateQuery+" WHERE w.id = $2", srs.DefaultEase, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return srs.CardState{}, fmt.Errorf("%w: id %d", srs.ErrWordNotFound, wordID)
	}
	if err != nil {
		return srs.CardState{}, fmt.Errorf("failed to load card state: %w", err)
	}
	return row.toState(), nil
}

// ScanStates returns the latest card state for every word in the catalog.
func (r *ReviewRepository) ScanStates(ctx context.Context) ([]srs.CardState, error) {
	var rows []cardRow
	if err := DB.SelectContext(ctx, &rows, latestStateQuery, srs.DefaultEase); err != nil {
		return nil, fmt.Errorf("failed to scan card states: %w", err)
	}
	states := make([]srs.CardState, 0, len(rows))
	for _, row := range rows {
		states = append(states, row.toState())
	}
	return states, nil
}

// RecentQualities returns up to limit quality ratings for a word, most
// recent first.
func (r *ReviewRepository) RecentQualities(ctx context.Context, wordID int64, limit int) ([]int, error) {
	var qualities []int
	err := DB.SelectContext(ctx, &qualities, `
		SELECT quality FROM reviews
		WHERE word_id = $1
		ORDER BY reviewed_at DESC, id DESC
		LIMIT $2`,
		wordID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent qualities: %w", err)
	}
	return qualities, nil
}

// RecentlyFailed returns words with at least one failing review, most
// recently failed first.
func (r *ReviewRepository) RecentlyFailed(ctx context.Context, limit int) ([]int64, error) {
	var ids []int64
	err := DB.SelectContext(ctx, &ids, `
		SELECT word_id FROM reviews
		WHERE quality < $1
		GROUP BY word_id
		ORDER BY MAX(reviewed_at) DESC
		LIMIT $2`,
		srs.PassThreshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load failing words: %w", err)
	}
	return ids, nil
}

// ReviewCounts returns total and passing review counts since the given
// time; a zero time counts everything.
func (r *ReviewRepository) ReviewCounts(ctx context.Context, since time.Time) (int, int, error) {
	var row struct {
		Total  int `db:"total"`
		Passed int `db:"passed"`
	}
	query := `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN quality >= $1 THEN 1 ELSE 0 END), 0) AS passed
		FROM reviews`
	var err error
	if since.IsZero() {
		err = DB.GetContext(ctx, &row, query, srs.PassThreshold)
	} else {
		err = DB.GetContext(ctx, &row, query+" WHERE reviewed_at >= $2", srs.PassThreshold, since)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return row.Total, row.Passed, nil
}

// MeanQualitySince returns the mean quality of reviews at or after the
// given time, 0 when there are none.
func (r *ReviewRepository) MeanQualitySince(ctx context.Context, since time.Time) (float64, error) {
	var mean float64
	err := DB.GetContext(ctx, &mean,
		"SELECT COALESCE(AVG(quality), 0) FROM reviews WHERE reviewed_at >= $1", since)
	if err != nil {
		return 0, fmt.Errorf("failed to average quality: %w", err)
	}
	return mean, nil
}

// MeanQualityBefore returns the mean quality of reviews strictly before the
// given time, 0 when there are none.
func (r *ReviewRepository) MeanQualityBefore(ctx context.Context, before time.Time) (float64, error) {
	var mean float64
	err := DB.GetContext(ctx, &mean,
		"SELECT COALESCE(AVG(quality), 0) FROM reviews WHERE reviewed_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("failed to average quality: %w", err)
	}
	return mean, nil
}
