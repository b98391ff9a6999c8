package database

import (
	"context"
	"fmt"

	"github.com/example/greekbot/pkg/models"
)

// Words whose latest interval has reached this many days count as mastered.
const masteredIntervalDays = 21.0

// StatisticsRepository aggregates catalog and ledger data for progress
// reporting. Everything here is read-only.
type StatisticsRepository struct{}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository() *StatisticsRepository {
	return &StatisticsRepository{}
}

// WordStrength is a word together with its latest scheduling snapshot, used
// for the struggling/strongest report sections.
type WordStrength struct {
	Greek      string  `db:"greek"`
	English    string  `db:"english"`
	EaseFactor float64 `db:"ease_factor"`
	Interval   float64 `db:"interval"`
	Repetition int     `db:"repetition"`
}

// Overview summarises catalog and ledger totals.
type Overview struct {
	TotalWords   int
	SeenWords    int
	TotalReviews int
	Mastered     int
	MessagesOut  int
	MessagesIn   int
}

// latestReviewJoin pairs each reviewed word with its newest ledger entry.
const latestReviewJoin = `
	FROM words w
	JOIN (
		SELECT word_id, ease_factor, interval, repetition,
		       ROW_NUMBER() OVER (PARTITION BY word_id ORDER BY reviewed_at DESC, id DESC) AS rn
		FROM reviews
	) r ON r.word_id = w.id AND r.rn = 1
`

// GetOverview returns the headline progress numbers.
func (s *StatisticsRepository) GetOverview(ctx context.Context) (*Overview, error) {
	var o Overview
	queries := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&o.TotalWords, "SELECT COUNT(*) FROM words", nil},
		{&o.SeenWords, "SELECT COUNT(DISTINCT word_id) FROM reviews", nil},
		{&o.TotalReviews, "SELECT COUNT(*) FROM reviews", nil},
		{&o.Mastered, "SELECT COUNT(*) " + latestReviewJoin + " WHERE r.interval >= $1", []any{masteredIntervalDays}},
		{&o.MessagesOut, "SELECT COUNT(*) FROM messages WHERE direction = $1", []any{models.DirectionOut}},
		{&o.MessagesIn, "SELECT COUNT(*) FROM messages WHERE direction = $1", []any{models.DirectionIn}},
	}
	for _, q := range queries {
		if err := DB.GetContext(ctx, q.dst, q.query, q.args...); err != nil {
			return nil, fmt.Errorf("failed to load overview: %w", err)
		}
	}
	return &o, nil
}

// Struggling returns words with low ease or a recent reset, hardest first.
func (s *StatisticsRepository) Struggling(ctx context.Context, limit int) ([]WordStrength, error) {
	var rows []WordStrength
	err := DB.SelectContext(ctx, &rows, `
		SELECT w.greek, w.english, r.ease_factor, r.interval, r.repetition `+latestReviewJoin+`
		WHERE r.ease_factor < 2.0 OR r.repetition = 0
		ORDER BY r.ease_factor ASC, r.interval ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load struggling words: %w", err)
	}
	return rows, nil
}

// Strongest returns the words with the longest current intervals.
func (s *StatisticsRepository) Strongest(ctx context.Context, limit int) ([]WordStrength, error) {
	var rows []WordStrength
	err := DB.SelectContext(ctx, &rows, `
		SELECT w.greek, w.english, r.ease_factor, r.interval, r.repetition `+latestReviewJoin+`
		ORDER BY r.interval DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load strongest words: %w", err)
	}
	return rows, nil
}
