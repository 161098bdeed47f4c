package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveListener records that a user is currently playing a song. Rows are
// superseded, never deleted: registering a new song flips every prior row for
// that user to inactive first, so at most one row per user has IsActive=true.
type ActiveListener struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;index:idx_listener_user" json:"user_id"`
	SongID    string    `gorm:"type:text;not null;index:idx_listener_song" json:"song_id"`
	StartedAt time.Time `json:"started_at"`
	IsActive  bool      `gorm:"index" json:"is_active"`
}

func (a *ActiveListener) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

// ListeningHistory keeps one row per song load, feeding the top-genre
// recommendation query. Never read on the matchmaking path.
type ListeningHistory struct {
	gorm.Model

	UserID     string    `gorm:"type:text;not null;index" json:"user_id"`
	SongID     string    `gorm:"type:text;not null" json:"song_id"`
	Genre      string    `gorm:"type:text" json:"genre"`
	ListenedAt time.Time `json:"listened_at"`
}
