// Package scheduler decides when proactive messages go out. Instead of
// fixed send times it rolls a probability every tick, weighted towards the
// hours a learner actually reads messages, so sends land at varied but
// plausible moments while still hitting the daily target.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/greekbot/internal/config"
	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/metrics"
	"github.com/example/greekbot/internal/srs"
)

const (
	// tickInterval is how often the send decision is re-rolled. Three ticks
	// per hour is what the slot math below assumes.
	tickInterval = 20 * time.Minute
	ticksPerHour = 3

	// maxSendProbability keeps a single tick from becoming a guaranteed
	// send even at peak weight.
	maxSendProbability = 0.9

	// urgencyProbability is the floor applied when the day is running out
	// of slots relative to the remaining target.
	urgencyProbability = 0.5

	digestHour       = 18
	digestWindowMins = 20
)

// Dispatcher sends proactive messages. Satisfied by messenger.Messenger.
type Dispatcher interface {
	SendScheduled(ctx context.Context, dateKey string) error
	SendDigest(ctx context.Context, weekKey string) error
}

// Scheduler runs the periodic send check and the weekly digest.
type Scheduler struct {
	cron       *gocron.Scheduler
	cfg        *config.Config
	loc        *time.Location
	dispatcher Dispatcher
	sendLog    *database.SendLogRepository
	engine     *srs.Engine
	log        *zap.Logger
	now        func() time.Time
	randFn     func() float64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRand replaces the RNG, for tests.
func WithRand(f func() float64) Option {
	return func(s *Scheduler) { s.randFn = f }
}

// New creates a scheduler.
func New(cfg *config.Config, dispatcher Dispatcher, engine *srs.Engine, logger *zap.Logger, opts ...Option) *Scheduler {
	loc := cfg.Location()
	s := &Scheduler{
		cron:       gocron.NewScheduler(loc),
		cfg:        cfg,
		loc:        loc,
		dispatcher: dispatcher,
		sendLog:    database.NewSendLogRepository(),
		engine:     engine,
		log:        logger.Named("scheduler"),
		now:        time.Now,
		randFn:     rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the periodic tick in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.Every(tickInterval).Do(func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule tick: %w", err)
	}
	s.cron.StartAsync()
	s.log.Info("scheduler started",
		zap.Int("daily_target", s.cfg.DailyTarget),
		zap.Int("active_start", s.cfg.ActiveHoursStart),
		zap.Int("active_end", s.cfg.ActiveHoursEnd))
	return nil
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) tick(ctx context.Context) {
	due, err := s.engine.DueCards(ctx, 0)
	if err != nil {
		s.log.Error("due scan failed", zap.Error(err))
	} else {
		metrics.DueWords.Set(float64(len(due)))
	}

	send, err := s.ShouldSendNow(ctx)
	if err != nil {
		s.log.Error("send check failed", zap.Error(err))
		return
	}
	if send {
		if err := s.dispatcher.SendScheduled(ctx, s.todayKey()); err != nil {
			s.log.Error("scheduled send failed", zap.Error(err))
		}
	}

	s.maybeSendWeeklyDigest(ctx)
}

// ShouldSendNow rolls the probabilistic send decision for the current tick.
// Outside active hours or with the daily target already met it is always
// false. Otherwise the chance is the remaining target spread over the
// remaining ticks of the day, scaled by the hour's engagement weight, with
// a floor when slots are running out.
func (s *Scheduler) ShouldSendNow(ctx context.Context) (bool, error) {
	now := s.now().In(s.loc)
	hour := now.Hour()
	if hour < s.cfg.ActiveHoursStart || hour >= s.cfg.ActiveHoursEnd {
		return false, nil
	}

	sent, err := s.sendLog.CountForDate(ctx, now.Format("2006-01-02"))
	if err != nil {
		return false, err
	}
	if sent >= s.cfg.DailyTarget {
		return false, nil
	}

	remainingTarget := s.cfg.DailyTarget - sent
	remainingSlots := (s.cfg.ActiveHoursEnd - hour) * ticksPerHour
	if remainingSlots <= 0 {
		return false, nil
	}

	prob := float64(remainingTarget) / float64(remainingSlots) * timeWeight(hour, s.cfg)
	if prob > maxSendProbability {
		prob = maxSendProbability
	}
	if remainingSlots <= remainingTarget*2 && prob < urgencyProbability {
		prob = urgencyProbability
	}
	return s.randFn() < prob, nil
}

// timeWeight biases sends towards commute and evening hours, when a quick
// vocabulary nudge is most likely to be read.
func timeWeight(hour int, cfg *config.Config) float64 {
	switch {
	case hour < cfg.ActiveHoursStart || hour >= cfg.ActiveHoursEnd:
		return 0.0
	case (hour >= 8 && hour <= 10) || (hour >= 18 && hour <= 20):
		return 1.5
	case hour >= 11 && hour <= 14:
		return 0.8
	default:
		return 1.0
	}
}

// maybeSendWeeklyDigest sends the progress report on Sunday evening, once
// per ISO week. The dedup key lives in the send log alongside daily keys.
func (s *Scheduler) maybeSendWeeklyDigest(ctx context.Context) {
	now := s.now().In(s.loc)
	if now.Weekday() != time.Sunday || now.Hour() != digestHour || now.Minute() >= digestWindowMins {
		return
	}

	year, week := now.ISOWeek()
	weekKey := fmt.Sprintf("%d-W%02d-digest", year, week)
	count, err := s.sendLog.CountForDate(ctx, weekKey)
	if err != nil {
		s.log.Error("digest dedup check failed", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}
	if err := s.dispatcher.SendDigest(ctx, weekKey); err != nil {
		s.log.Error("digest send failed", zap.Error(err))
	}
}

func (s *Scheduler) todayKey() string {
	return s.now().In(s.loc).Format("2006-01-02")
}
