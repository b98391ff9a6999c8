package models

import "time"

// Message direction values.
const (
	DirectionOut = "out"
	DirectionIn  = "in"
)

// Message is one logged chat message. Outgoing messages carry the IDs of the
// vocabulary words they were built around so later reviews can be tied back
// to an exposure.
type Message struct {
	ID            int64     `json:"id" db:"id"`
	ExternalID    string    `json:"external_id" db:"external_id"` // UUID assigned at send time
	Direction     string    `json:"direction" db:"direction"`
	Body          string    `json:"body" db:"body"`
	TargetWordIDs string    `json:"target_word_ids" db:"target_word_ids"` // JSON array of word IDs
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
