package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Delivery states for the session-local pending-write log. Never persisted:
// a message shown before its insert confirms is Pending, then settles to
// Committed or Failed. A Failed entry stays visible — the local log is allowed
// to run ahead of the store.
const (
	DeliveryPending   = "pending"
	DeliveryCommitted = "committed"
	DeliveryFailed    = "failed"
)

// ChatMessage is one entry in a match's ordered message log. SenderID and
// ReceiverID are nil for bot-authored system messages such as the welcome
// line synthesized on first open.
type ChatMessage struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	MatchID    string    `gorm:"type:text;not null;index:idx_match_msg" json:"match_id"`
	SenderID   *string   `gorm:"type:text;index" json:"sender_id"`
	ReceiverID *string   `gorm:"type:text;index" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`

	Delivery string `gorm:"-" json:"delivery,omitempty"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// IsBot reports whether the message was authored by the system rather than a
// participant.
func (m *ChatMessage) IsBot() bool {
	return m.SenderID == nil
}

// SentBy reports whether userID authored the message.
func (m *ChatMessage) SentBy(userID string) bool {
	return m.SenderID != nil && *m.SenderID == userID
}
