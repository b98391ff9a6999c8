package models

// Quality trend classifications for RetentionStats.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// RetentionStats aggregates the review ledger into self-monitoring signals:
// how well recall is holding up overall and over the trailing week, and
// whether answer quality is trending up or down.
type RetentionStats struct {
	RetentionRate    float64 `json:"retention_rate"`     // % of all reviews with quality >= 3
	RecentRetention  float64 `json:"recent_retention"`   // same, trailing 7 days
	TotalReviews     int     `json:"total_reviews"`
	RecentReviews    int     `json:"recent_reviews"`
	AvgQualityRecent float64 `json:"avg_quality_recent"` // mean quality, trailing 7 days
	AvgQualityOlder  float64 `json:"avg_quality_older"`  // mean quality, older than 7 days
	QualityTrend     string  `json:"quality_trend"`      // improving / declining / stable
}
