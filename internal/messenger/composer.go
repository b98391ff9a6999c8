package messenger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/example/greekbot/internal/srs"
	"github.com/example/greekbot/pkg/models"
)

const (
	composeModel     = "claude-sonnet-4-5-20250929"
	composeMaxTokens = 1000
)

// ClaudeComposer generates message text with the Anthropic API.
type ClaudeComposer struct {
	client *anthropic.Client
}

// NewClaudeComposer creates a composer with the given API key.
func NewClaudeComposer(apiKey string) *ClaudeComposer {
	return &ClaudeComposer{client: anthropic.NewClient(apiKey)}
}

// Compose sends the prompt and returns the first text block of the reply.
func (c *ClaudeComposer) Compose(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     composeModel,
		MaxTokens: composeMaxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					{Type: "text", Text: &prompt},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", errors.New("anthropic response contained no text")
}

func buildTeachingPrompt(words []srs.CardState, history []models.Message) string {
	var b strings.Builder
	b.WriteString("You are a friendly Greek language tutor chatting with a learner over Telegram.\n")
	b.WriteString("Write one short, casual message (3-6 sentences) that naturally teaches or reinforces these Greek words:\n\n")
	writeWordList(&b, words)
	b.WriteString("\nFor words the learner has seen before, use them in context rather than re-explaining. ")
	b.WriteString("For new words, give the meaning and one simple example sentence. ")
	b.WriteString("Write Greek in Greek script. Do not use numbered lists or headings.\n")
	writeHistory(&b, history)
	return b.String()
}

func buildRecallPrompt(words []srs.CardState, history []models.Message) string {
	var b strings.Builder
	b.WriteString("You are a friendly Greek language tutor chatting with a learner over Telegram.\n")
	b.WriteString("Write one short message that playfully quizzes the learner on these words without giving the answers away:\n\n")
	writeWordList(&b, words)
	b.WriteString("\nAsk them to reply with the meaning, or to use the word in a sentence. Keep it to 2-3 sentences.\n")
	writeHistory(&b, history)
	return b.String()
}

func writeWordList(b *strings.Builder, words []srs.CardState) {
	for _, w := range words {
		status := "new"
		if w.LastReview != nil {
			if w.IsLearning() {
				status = "learning"
			} else {
				status = "reviewing"
			}
		}
		fmt.Fprintf(b, "- %s (%s) [%s]\n", w.Greek, w.English, status)
	}
}

func writeHistory(b *strings.Builder, history []models.Message) {
	if len(history) == 0 {
		return
	}
	b.WriteString("\nRecent conversation, newest first, for tone and continuity:\n")
	for _, msg := range history {
		role := "tutor"
		if msg.Direction == models.DirectionIn {
			role = "learner"
		}
		fmt.Fprintf(b, "%s: %s\n", role, truncate(msg.Body, 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
