// Package telegram is a send-only Telegram client. The trainer pushes
// messages to one configured chat; update handling and command routing are
// deliberately out of scope.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Client delivers plain-text messages to a single chat.
type Client struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

// New authenticates against the Bot API.
func New(token string, chatID int64, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	return &Client{api: api, chatID: chatID, log: logger.Named("telegram")}, nil
}

// Send delivers one message to the configured chat.
func (c *Client) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(c.chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	c.log.Debug("message sent", zap.Int("length", len(text)))
	return nil
}
