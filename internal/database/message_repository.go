package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/greekbot/pkg/models"
)

// MessageRepository logs sent and received chat messages. Outgoing entries
// record the target word ids so reviews can be correlated with exposures.
type MessageRepository struct{}

// NewMessageRepository creates a new repository instance
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

// InsertOutgoing logs a sent message and returns it with its assigned ids.
func (m *MessageRepository) InsertOutgoing(ctx context.Context, body string, targetWordIDs []int64) (*models.Message, error) {
	ids, err := json.Marshal(targetWordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode word ids: %w", err)
	}
	msg := &models.Message{
		ExternalID:    uuid.NewString(),
		Direction:     models.DirectionOut,
		Body:          body,
		TargetWordIDs: string(ids),
		CreatedAt:     time.Now().UTC(),
	}
	return msg, m.insert(ctx, msg)
}

func (m *MessageRepository) insert(ctx context.Context, msg *models.Message) error {
	if DB.DriverName() == "postgres" {
		return DB.QueryRowContext(ctx, `
			INSERT INTO messages (external_id, direction, body, target_word_ids, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			msg.ExternalID, msg.Direction, msg.Body, msg.TargetWordIDs, msg.CreatedAt,
		).Scan(&msg.ID)
	}

	res, err := DB.ExecContext(ctx, `
		INSERT INTO messages (external_id, direction, body, target_word_ids, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ExternalID, msg.Direction, msg.Body, msg.TargetWordIDs, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// Recent returns the newest messages first, for conversation context.
func (m *MessageRepository) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := DB.SelectContext(ctx, &msgs, `
		SELECT * FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}
	return msgs, nil
}

// SendLogRepository tracks proactive sends per calendar day so the
// scheduler can enforce the daily target, and deduplicates weekly digests.
type SendLogRepository struct{}

// NewSendLogRepository creates a new repository instance
func NewSendLogRepository() *SendLogRepository {
	return &SendLogRepository{}
}

// Append records one send under the given date key (YYYY-MM-DD for normal
// sends, an ISO-week key for digests).
func (s *SendLogRepository) Append(ctx context.Context, dateKey string, messageID int64) error {
	var msgID any
	if messageID != 0 {
		msgID = messageID
	}
	_, err := DB.ExecContext(ctx, `
		INSERT INTO send_log (sent_date, sent_at, message_id)
		VALUES ($1, $2, $3)`,
		dateKey, time.Now().UTC(), msgID,
	)
	if err != nil {
		return fmt.Errorf("failed to append send log: %w", err)
	}
	return nil
}

// CountForDate returns how many sends are recorded under a date key.
func (s *SendLogRepository) CountForDate(ctx context.Context, dateKey string) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM send_log WHERE sent_date = $1", dateKey)
	if err != nil {
		return 0, fmt.Errorf("failed to count sends: %w", err)
	}
	return count, nil
}
