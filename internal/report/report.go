// Package report renders the learner's progress as plain text, for on-demand
// inspection and the weekly digest.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/srs"
	"github.com/example/greekbot/pkg/models"
)

const (
	leechLimit      = 8
	strugglingLimit = 10
	strongestLimit  = 5
)

// Generator assembles report sections from the catalog and the ledger.
type Generator struct {
	engine *srs.Engine
	stats  *database.StatisticsRepository
}

// New creates a report generator.
func New(engine *srs.Engine) *Generator {
	return &Generator{
		engine: engine,
		stats:  database.NewStatisticsRepository(),
	}
}

// Generate renders the full report.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	var sections []string

	progress, err := g.progressSection(ctx)
	if err != nil {
		return "", err
	}
	sections = append(sections, progress)

	retention, err := g.retentionSection(ctx)
	if err != nil {
		return "", err
	}
	sections = append(sections, retention)

	for _, build := range []func(context.Context) (string, error){
		g.leechSection, g.strugglingSection, g.strongestSection, g.dueSection,
	} {
		section, err := build(ctx)
		if err != nil {
			return "", err
		}
		if section != "" {
			sections = append(sections, section)
		}
	}

	return strings.Join(sections, "\n\n"), nil
}

func (g *Generator) progressSection(ctx context.Context) (string, error) {
	o, err := g.stats.GetOverview(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"--- Progress ---\nTotal words: %d\nSeen: %d | Mastered (21d+): %d\nReviews recorded: %d\nMessages: %d sent, %d received",
		o.TotalWords, o.SeenWords, o.Mastered, o.TotalReviews, o.MessagesOut, o.MessagesIn,
	), nil
}

func (g *Generator) retentionSection(ctx context.Context) (string, error) {
	stats, err := g.engine.RetentionStats(ctx)
	if err != nil {
		return "", err
	}

	icon := "="
	switch stats.QualityTrend {
	case models.TrendImproving:
		icon = "^"
	case models.TrendDeclining:
		icon = "v"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Retention ---\n")
	fmt.Fprintf(&b, "Overall: %.1f%% (%d reviews)\n", stats.RetentionRate, stats.TotalReviews)
	fmt.Fprintf(&b, "Last 7 days: %.1f%% (%d reviews)\n", stats.RecentRetention, stats.RecentReviews)
	fmt.Fprintf(&b, "Trend: %s %s", icon, stats.QualityTrend)

	for _, rec := range recommendations(stats) {
		fmt.Fprintf(&b, "\n* %s", rec)
	}
	return b.String(), nil
}

// recommendations turns the retention numbers into at most a couple of
// actionable nudges. Thresholds need a minimum review volume so a handful
// of lucky or unlucky answers doesn't trigger advice.
func recommendations(stats models.RetentionStats) []string {
	var recs []string
	if stats.QualityTrend == models.TrendDeclining && stats.RecentReviews > 5 {
		recs = append(recs, "Retention is slipping. Slow down on new words and focus on review.")
	}
	if stats.RecentRetention > 85 && stats.RecentReviews > 10 {
		recs = append(recs, "Strong retention. Ready for more new words.")
	}
	return recs
}

func (g *Generator) leechSection(ctx context.Context) (string, error) {
	leeches, err := g.engine.Leeches(ctx, leechLimit)
	if err != nil {
		return "", err
	}
	if len(leeches) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("--- Leech words (failing repeatedly) ---")
	for _, c := range leeches {
		failures, err := g.engine.ConsecutiveFailures(ctx, c.WordID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n%s (%s): %d failures in a row", c.Greek, c.English, failures)
	}
	return b.String(), nil
}

func (g *Generator) strugglingSection(ctx context.Context) (string, error) {
	rows, err := g.stats.Struggling(ctx, strugglingLimit)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("--- Struggling ---")
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s (%s): ease %.2f, interval %.1fd", r.Greek, r.English, r.EaseFactor, r.Interval)
	}
	return b.String(), nil
}

func (g *Generator) strongestSection(ctx context.Context) (string, error) {
	rows, err := g.stats.Strongest(ctx, strongestLimit)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("--- Strongest ---")
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s (%s): interval %.0fd", r.Greek, r.English, r.Interval)
	}
	return b.String(), nil
}

func (g *Generator) dueSection(ctx context.Context) (string, error) {
	due, err := g.engine.DueCards(ctx, 0)
	if err != nil {
		return "", err
	}

	var fresh, learning, review int
	for _, c := range due {
		switch {
		case c.LastReview == nil:
			fresh++
		case c.IsLearning():
			learning++
		default:
			review++
		}
	}
	return fmt.Sprintf(
		"--- Due now ---\nNew: %d | Learning: %d | Review: %d",
		fresh, learning, review,
	), nil
}
