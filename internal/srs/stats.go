package srs

import (
	"context"
	"fmt"
	"time"

	"github.com/example/greekbot/pkg/models"
)

// trendDelta is how far the recent mean quality must move from the older
// mean before the trend leaves "stable".
const trendDelta = 0.3

// RetentionStats computes retention metrics for self-monitoring: success
// rates over all time and the trailing 7 days, plus a quality trend. The
// ledger is only read, never written.
func (e *Engine) RetentionStats(ctx context.Context) (models.RetentionStats, error) {
	var stats models.RetentionStats

	now := e.now()
	weekAgo := now.AddDate(0, 0, -7)

	total, passed, err := e.store.ReviewCounts(ctx, time.Time{})
	if err != nil {
		return stats, fmt.Errorf("failed to count reviews: %w", err)
	}
	recentTotal, recentPassed, err := e.store.ReviewCounts(ctx, weekAgo)
	if err != nil {
		return stats, fmt.Errorf("failed to count recent reviews: %w", err)
	}

	stats.TotalReviews = total
	stats.RecentReviews = recentTotal
	if total > 0 {
		stats.RetentionRate = float64(passed) / float64(total) * 100
	}
	if recentTotal > 0 {
		stats.RecentRetention = float64(recentPassed) / float64(recentTotal) * 100
	}

	avgRecent, err := e.store.MeanQualitySince(ctx, weekAgo)
	if err != nil {
		return stats, fmt.Errorf("failed to average recent quality: %w", err)
	}
	// With no reviews older than a week this mean is 0, so a fresh ledger
	// only reads "improving" once the recent mean alone clears the delta.
	// Documented cold-start behavior; do not normalise it away.
	avgOlder, err := e.store.MeanQualityBefore(ctx, weekAgo)
	if err != nil {
		return stats, fmt.Errorf("failed to average older quality: %w", err)
	}

	stats.AvgQualityRecent = avgRecent
	stats.AvgQualityOlder = avgOlder

	switch {
	case avgRecent > avgOlder+trendDelta:
		stats.QualityTrend = models.TrendImproving
	case avgRecent < avgOlder-trendDelta:
		stats.QualityTrend = models.TrendDeclining
	default:
		stats.QualityTrend = models.TrendStable
	}
	return stats, nil
}
