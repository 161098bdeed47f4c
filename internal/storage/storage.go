package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"tunemate/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the store surface the matchmaking engine consumes. Not-found
// conditions come back as (nil, nil) — absence is a normal outcome, not an
// error.
type Storage interface {
	// Active-listener registry
	RegisterActiveListener(userID, songID string) error
	UnregisterActiveListener(userID string) error
	GetActiveListenerCount(songID string) (int64, error)
	GetActiveListeners(songID, excludeUserID string) ([]models.ActiveListener, error)
	IsActivelyListening(userID, songID string) (bool, error)

	// Matches
	FindMatchByPair(userA, userB, songID string) (*models.Match, error)
	CreateMatch(match *models.Match) error
	GetMatchByID(matchID string) (*models.Match, error)
	DeleteMatch(matchID string) error
	MatchesForUser(userID string) ([]models.Match, error)

	// Chat messages
	GetChatMessages(matchID string) ([]models.ChatMessage, error)
	SaveMessage(msg *models.ChatMessage) error

	// Profiles
	GetProfileByID(userID string) (*models.Profile, error)
	SaveProfile(profile *models.Profile) error

	// Listening history
	AddListeningHistory(userID, songID, genre string) error
	TopGenre(userID string) (string, error)
}

// Service implements Storage on PostgreSQL via GORM, with Redis carrying the
// change feed and the catalog proxy cache.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// RegisterActiveListener flips every prior active row for the user to
// inactive, then inserts a fresh active row. Two independent single-row
// operations; last writer wins on IsActive when calls race.
func (s *Service) RegisterActiveListener(userID, songID string) error {
	if err := s.DB.Model(&models.ActiveListener{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error; err != nil {
		log.Printf("ERROR: Failed to deactivate prior listeners for user %s: %v", userID, err)
		return err
	}

	listener := models.ActiveListener{
		UserID:    userID,
		SongID:    songID,
		StartedAt: time.Now(),
		IsActive:  true,
	}
	if err := s.DB.Create(&listener).Error; err != nil {
		log.Printf("ERROR: Failed to register active listener %s/%s: %v", userID, songID, err)
		return err
	}

	s.publish(models.TableActiveListeners, models.EventInsert, listener, nil)
	return nil
}

// UnregisterActiveListener marks every row for the user inactive. Called on
// logout and disconnect.
func (s *Service) UnregisterActiveListener(userID string) error {
	var last models.ActiveListener
	found := true
	err := s.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Order("started_at desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		found = false
	} else if err != nil {
		return err
	}

	if err := s.DB.Model(&models.ActiveListener{}).
		Where("user_id = ?", userID).
		Update("is_active", false).Error; err != nil {
		log.Printf("ERROR: Failed to unregister listener for user %s: %v", userID, err)
		return err
	}

	if found {
		old := last
		last.IsActive = false
		s.publish(models.TableActiveListeners, models.EventUpdate, last, old)
	}
	return nil
}

func (s *Service) GetActiveListenerCount(songID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.ActiveListener{}).
		Where("song_id = ? AND is_active = ?", songID, true).
		Count(&count).Error
	return count, err
}

// GetActiveListeners returns the active rows for a song, excluding one user —
// the candidate pool for matchmaking.
func (s *Service) GetActiveListeners(songID, excludeUserID string) ([]models.ActiveListener, error) {
	var listeners []models.ActiveListener
	err := s.DB.Where("song_id = ? AND is_active = ? AND user_id <> ?", songID, true, excludeUserID).
		Find(&listeners).Error
	if err != nil {
		log.Printf("ERROR: Failed to fetch active listeners for song %s: %v", songID, err)
		return nil, err
	}
	return listeners, nil
}

// IsActivelyListening reports whether the user's current active row is for
// this song. Guards real-time match checks against stale listening state.
func (s *Service) IsActivelyListening(userID, songID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.ActiveListener{}).
		Where("user_id = ? AND song_id = ? AND is_active = ?", userID, songID, true).
		Count(&count).Error
	return count > 0, err
}

// DeactivateStaleListeners flips active rows older than age to inactive.
// Run on a schedule; a client that vanished without unregistering would
// otherwise stay matchable forever.
func (s *Service) DeactivateStaleListeners(age time.Duration) (int64, error) {
	res := s.DB.Model(&models.ActiveListener{}).
		Where("is_active = ? AND started_at < ?", true, time.Now().Add(-age)).
		Update("is_active", false)
	if res.Error != nil {
		log.Printf("ERROR: Failed to sweep stale listeners: %v", res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// FindMatchByPair looks up the deduplicated match for an unordered pair and a
// song. Rows are stored pair-normalized, but both orderings are checked so
// lookups stay correct for rows predating normalization.
func (s *Service) FindMatchByPair(userA, userB, songID string) (*models.Match, error) {
	var match models.Match
	err := s.DB.Where("song_id = ?", songID).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
			userA, userB, userB, userA).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to look up match %s/%s song %s: %v", userA, userB, songID, err)
		return nil, err
	}
	return &match, nil
}

// CreateMatch inserts a new match row and announces it on the change feed.
// The unique pair index makes the second of two racing inserts fail; callers
// re-read the winning row in that case.
func (s *Service) CreateMatch(match *models.Match) error {
	if err := s.DB.Create(match).Error; err != nil {
		return err
	}
	s.publish(models.TableMatches, models.EventInsert, match, nil)
	return nil
}

func (s *Service) GetMatchByID(matchID string) (*models.Match, error) {
	var match models.Match
	err := s.DB.Where("id = ?", matchID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get match %s: %v", matchID, err)
		return nil, err
	}
	return &match, nil
}

// DeleteMatch removes a match and its messages. The only deletion path in the
// system, triggered by an explicit user action.
func (s *Service) DeleteMatch(matchID string) error {
	match, err := s.GetMatchByID(matchID)
	if err != nil {
		return err
	}
	if match == nil {
		return nil
	}

	if err := s.DB.Where("match_id = ?", matchID).Delete(&models.ChatMessage{}).Error; err != nil {
		log.Printf("ERROR: Failed to delete messages for match %s: %v", matchID, err)
		return err
	}
	if err := s.DB.Delete(&models.Match{}, "id = ?", matchID).Error; err != nil {
		log.Printf("ERROR: Failed to delete match %s: %v", matchID, err)
		return err
	}

	s.publish(models.TableMatches, models.EventDelete, nil, match)
	return nil
}

func (s *Service) MatchesForUser(userID string) ([]models.Match, error) {
	var matches []models.Match
	err := s.DB.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at asc").Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// GetChatMessages loads the full message log for a match, oldest first. The
// store-assigned timestamp is the display order.
func (s *Service) GetChatMessages(matchID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.DB.Where("match_id = ?", matchID).
		Order("created_at asc").Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get chat messages for match %s: %v", matchID, err)
		return nil, err
	}
	return messages, nil
}

// SaveMessage persists one chat message and announces it on the change feed.
func (s *Service) SaveMessage(msg *models.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for match %s: %v", msg.MatchID, err)
		return err
	}
	s.publish(models.TableChatMessages, models.EventInsert, msg, nil)
	return nil
}

func (s *Service) GetProfileByID(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.Where("id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get profile %s: %v", userID, err)
		return nil, err
	}
	return &profile, nil
}

// SaveProfile upserts by email so repeated logins keep one row per user.
func (s *Service) SaveProfile(profile *models.Profile) error {
	var existing models.Profile
	err := s.DB.Where("email = ?", profile.Email).First(&existing).Error
	if err == nil {
		profile.ID = existing.ID
		return s.DB.Save(profile).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.DB.Create(profile).Error
	}
	return err
}

func (s *Service) AddListeningHistory(userID, songID, genre string) error {
	entry := models.ListeningHistory{
		UserID:     userID,
		SongID:     songID,
		Genre:      genre,
		ListenedAt: time.Now(),
	}
	return s.DB.Create(&entry).Error
}

// TopGenre returns the user's most listened genre, or "" with no history.
func (s *Service) TopGenre(userID string) (string, error) {
	var genre string
	err := s.DB.Model(&models.ListeningHistory{}).
		Select("genre").
		Where("user_id = ? AND genre <> ''", userID).
		Group("genre").
		Order("count(*) desc").
		Limit(1).
		Scan(&genre).Error
	if err != nil {
		return "", err
	}
	return genre, nil
}
