package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Profile represents a user of the service. Authentication itself lives
// outside the core; a nil/absent profile means matchmaking is disabled for
// that connection.
type Profile struct {
	ID     string `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:text;not null" json:"name"`
	Email  string `gorm:"uniqueIndex" json:"email"`
	Avatar string `gorm:"type:text" json:"avatar"`

	// FavoriteGenres is whatever the user declared at login. Recommendations
	// come from listening history, not from this field.
	FavoriteGenres pq.StringArray `gorm:"type:text[]" json:"favorite_genres,omitempty"`
}

// BeforeCreate generates a UUID for the profile when none was supplied.
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
