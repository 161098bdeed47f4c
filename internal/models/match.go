package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match is a deduplicated pairing of two users around one song, the unit that
// scopes a chat. The pair is unordered: BeforeCreate normalizes it so that
// User1ID < User2ID, and the composite unique index then rejects the second
// insert when two clients race to create the same pairing.
type Match struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	User1ID   string    `gorm:"type:text;not null;uniqueIndex:uq_match_pair" json:"user1_id"`
	User2ID   string    `gorm:"type:text;not null;uniqueIndex:uq_match_pair" json:"user2_id"`
	SongID    string    `gorm:"type:text;not null;uniqueIndex:uq_match_pair" json:"song_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates the row ID and normalizes the unordered pair.
func (m *Match) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.User2ID < m.User1ID {
		m.User1ID, m.User2ID = m.User2ID, m.User1ID
	}
	return
}

// Involves reports whether userID is one of the two participants.
func (m *Match) Involves(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherUser returns the participant that is not userID. Empty string when
// userID is not part of the match.
func (m *Match) OtherUser(userID string) string {
	switch userID {
	case m.User1ID:
		return m.User2ID
	case m.User2ID:
		return m.User1ID
	}
	return ""
}
