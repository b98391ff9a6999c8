// Package messenger selects which vocabulary to surface next, has a
// language model turn the selection into a chat message, and delivers it.
// How good the generated text is doesn't matter here; the word mix does.
package messenger

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/metrics"
	"github.com/example/greekbot/internal/srs"
)

const (
	// RecallProbability is the share of proactive messages that test active
	// recall instead of teaching.
	RecallProbability = 0.3

	newWordLimit    = 3
	reviewWordLimit = 3
	maxTargetWords  = 5
	minTargetWords  = 3
)

// Send mode labels, also used as metric label values.
const (
	ModeTeaching = "teaching"
	ModeRecall   = "recall"
	ModeDigest   = "digest"
)

// Sender delivers a finished message to the learner.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Composer turns a prompt into message text.
type Composer interface {
	Compose(ctx context.Context, prompt string) (string, error)
}

// ReportFunc produces the progress report used for digests.
type ReportFunc func(ctx context.Context) (string, error)

// Messenger composes and delivers proactive messages.
type Messenger struct {
	engine   *srs.Engine
	messages *database.MessageRepository
	sendLog  *database.SendLogRepository
	composer Composer
	sender   Sender
	report   ReportFunc
	log      *zap.Logger
	randFn   func() float64
}

// Option configures a Messenger.
type Option func(*Messenger)

// WithRand replaces the RNG, for tests.
func WithRand(f func() float64) Option {
	return func(m *Messenger) { m.randFn = f }
}

// New creates a messenger.
func New(engine *srs.Engine, composer Composer, sender Sender, report ReportFunc, logger *zap.Logger, opts ...Option) *Messenger {
	m := &Messenger{
		engine:   engine,
		messages: database.NewMessageRepository(),
		sendLog:  database.NewSendLogRepository(),
		composer: composer,
		sender:   sender,
		report:   report,
		log:      logger.Named("messenger"),
		randFn:   rand.Float64,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendScheduled composes and delivers one proactive message, logging it
// under the given date key. Roughly 30% of sends are recall prompts when
// there is something worth recalling.
func (m *Messenger) SendScheduled(ctx context.Context, dateKey string) error {
	mode := ModeTeaching
	words, err := m.SelectWords(ctx)
	if err != nil {
		return err
	}

	if m.randFn() < RecallProbability {
		recall, err := m.SelectRecallWords(ctx)
		if err != nil {
			return err
		}
		if len(recall) > 0 {
			mode, words = ModeRecall, recall
		}
	}

	if len(words) == 0 {
		m.log.Info("nothing due, skipping send")
		return nil
	}

	history, err := m.messages.Recent(ctx, 10)
	if err != nil {
		return err
	}

	var prompt string
	if mode == ModeRecall {
		prompt = buildRecallPrompt(words, history)
	} else {
		prompt = buildTeachingPrompt(words, history)
	}

	body, err := m.composer.Compose(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}

	if err := m.deliver(ctx, body, words, mode, dateKey); err != nil {
		return err
	}
	m.log.Info("proactive message sent",
		zap.String("mode", mode),
		zap.Int("words", len(words)))
	return nil
}

// SendDigest delivers the progress report, deduplicated by week key.
func (m *Messenger) SendDigest(ctx context.Context, weekKey string) error {
	text, err := m.report(ctx)
	if err != nil {
		return fmt.Errorf("failed to build digest: %w", err)
	}
	return m.deliver(ctx, "--- Weekly Digest ---\n\n"+text, nil, ModeDigest, weekKey)
}

func (m *Messenger) deliver(ctx context.Context, body string, words []srs.CardState, mode, dateKey string) error {
	if err := m.sender.Send(ctx, body); err != nil {
		return err
	}

	ids := make([]int64, 0, len(words))
	for _, w := range words {
		ids = append(ids, w.WordID)
	}
	msg, err := m.messages.InsertOutgoing(ctx, body, ids)
	if err != nil {
		return err
	}
	if err := m.sendLog.Append(ctx, dateKey, msg.ID); err != nil {
		return err
	}

	metrics.MessagesSent.WithLabelValues(mode).Inc()
	return nil
}

// SelectWords picks the mix for a teaching message: up to two due
// learning-phase words first (they need reinforcement most), then due
// review words, then new words to fill up, 3-5 total, shuffled.
func (m *Messenger) SelectWords(ctx context.Context) ([]srs.CardState, error) {
	due, err := m.engine.DueCards(ctx, 15)
	if err != nil {
		return nil, err
	}

	var learning, review, fresh []srs.CardState
	for _, c := range due {
		switch {
		case c.LastReview == nil:
			fresh = append(fresh, c)
		case c.IsLearning():
			learning = append(learning, c)
		default:
			review = append(review, c)
		}
	}

	selected := take(learning, 2)
	selected = append(selected, take(review, reviewWordLimit-len(selected))...)
	selected = append(selected, take(fresh, min(newWordLimit, maxTargetWords-len(selected)))...)

	// Still thin? Grab whatever else is due.
	if len(selected) < minTargetWords {
		for _, c := range due {
			if len(selected) >= minTargetWords {
				break
			}
			if !containsWord(selected, c.WordID) {
				selected = append(selected, c)
			}
		}
	}

	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected, nil
}

// SelectRecallWords picks 1-2 previously seen, graduated words for an
// active-recall prompt, preferring moderate intervals (1-30 days) where
// recall testing pays off most.
func (m *Messenger) SelectRecallWords(ctx context.Context) ([]srs.CardState, error) {
	due, err := m.engine.DueCards(ctx, 20)
	if err != nil {
		return nil, err
	}

	var candidates []srs.CardState
	for _, c := range due {
		if c.LastReview != nil && c.Repetition >= 2 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		for _, c := range due {
			if c.LastReview != nil {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var moderate []srs.CardState
	for _, c := range candidates {
		if c.Interval >= 1.0 && c.Interval <= 30.0 {
			moderate = append(moderate, c)
		}
	}
	if len(moderate) > 0 {
		candidates = moderate
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return take(candidates, 2), nil
}

func take(cards []srs.CardState, n int) []srs.CardState {
	if n <= 0 {
		return nil
	}
	if len(cards) > n {
		cards = cards[:n]
	}
	out := make([]srs.CardState, len(cards))
	copy(out, cards)
	return out
}

func containsWord(cards []srs.CardState, wordID int64) bool {
	for _, c := range cards {
		if c.WordID == wordID {
			return true
		}
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
