package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/srs"
	"github.com/example/greekbot/pkg/models"
)

var testNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func setupGenerator(t *testing.T) (*Generator, *srs.Engine) {
	t.Helper()
	require.NoError(t, database.Open("sqlite3", ":memory:"))
	t.Cleanup(func() { _ = database.Close() })

	engine := srs.NewEngine(database.NewReviewRepository(), zaptest.NewLogger(t),
		srs.WithClock(func() time.Time { return testNow }))
	return New(engine), engine
}

func addWord(t *testing.T, greek, english string) *models.Word {
	t.Helper()
	word := &models.Word{Greek: greek, English: english}
	require.NoError(t, database.NewWordRepository().Create(context.Background(), word))
	return word
}

func TestGenerateEmptyCatalog(t *testing.T) {
	g, _ := setupGenerator(t)
	text, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Contains(t, text, "--- Progress ---")
	assert.Contains(t, text, "Total words: 0")
	assert.Contains(t, text, "--- Retention ---")
	assert.Contains(t, text, "= stable")
	assert.Contains(t, text, "--- Due now ---")
	assert.NotContains(t, text, "Leech")
	assert.NotContains(t, text, "Struggling")
}

func TestGenerateWithHistory(t *testing.T) {
	g, engine := setupGenerator(t)
	ctx := context.Background()

	good := addWord(t, "καλός", "good")
	hard := addWord(t, "δύσκολος", "difficult")
	addWord(t, "νέος", "new")

	_, err := engine.RecordReview(ctx, good.ID, 5)
	require.NoError(t, err)
	for i := 0; i < srs.LeechThreshold; i++ {
		_, err := engine.RecordReview(ctx, hard.ID, 1)
		require.NoError(t, err)
	}

	text, err := g.Generate(ctx)
	require.NoError(t, err)

	assert.Contains(t, text, "Total words: 3")
	assert.Contains(t, text, "Seen: 2")
	assert.Contains(t, text, "--- Leech words (failing repeatedly) ---")
	assert.Contains(t, text, "δύσκολος (difficult): 4 failures in a row")
	assert.Contains(t, text, "--- Struggling ---")
	assert.Contains(t, text, "--- Strongest ---")
	assert.Contains(t, text, "New: 1")
}

func TestRecommendations(t *testing.T) {
	cases := []struct {
		name  string
		stats models.RetentionStats
		want  int
	}{
		{
			name:  "no data",
			stats: models.RetentionStats{QualityTrend: models.TrendStable},
			want:  0,
		},
		{
			name: "declining with volume",
			stats: models.RetentionStats{
				QualityTrend:  models.TrendDeclining,
				RecentReviews: 10,
			},
			want: 1,
		},
		{
			name: "declining without volume",
			stats: models.RetentionStats{
				QualityTrend:  models.TrendDeclining,
				RecentReviews: 3,
			},
			want: 0,
		},
		{
			name: "strong retention",
			stats: models.RetentionStats{
				QualityTrend:    models.TrendStable,
				RecentRetention: 92,
				RecentReviews:   15,
			},
			want: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, recommendations(tc.stats), tc.want)
		})
	}
}
