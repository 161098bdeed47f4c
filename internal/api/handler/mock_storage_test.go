package handler_test

import (
	"github.com/stretchr/testify/mock"

	"tunemate/backend/internal/models"
	"tunemate/backend/internal/storage"
)

// MockStorage is a testify mock of the store surface.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) RegisterActiveListener(userID, songID string) error {
	return m.Called(userID, songID).Error(0)
}

func (m *MockStorage) UnregisterActiveListener(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockStorage) GetActiveListenerCount(songID string) (int64, error) {
	args := m.Called(songID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetActiveListeners(songID, excludeUserID string) ([]models.ActiveListener, error) {
	args := m.Called(songID, excludeUserID)
	if listeners, ok := args.Get(0).([]models.ActiveListener); ok {
		return listeners, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) IsActivelyListening(userID, songID string) (bool, error) {
	args := m.Called(userID, songID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) FindMatchByPair(userA, userB, songID string) (*models.Match, error) {
	args := m.Called(userA, userB, songID)
	if match, ok := args.Get(0).(*models.Match); ok {
		return match, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) CreateMatch(match *models.Match) error {
	return m.Called(match).Error(0)
}

func (m *MockStorage) GetMatchByID(matchID string) (*models.Match, error) {
	args := m.Called(matchID)
	if match, ok := args.Get(0).(*models.Match); ok {
		return match, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) DeleteMatch(matchID string) error {
	return m.Called(matchID).Error(0)
}

func (m *MockStorage) MatchesForUser(userID string) ([]models.Match, error) {
	args := m.Called(userID)
	if matches, ok := args.Get(0).([]models.Match); ok {
		return matches, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) GetChatMessages(matchID string) ([]models.ChatMessage, error) {
	args := m.Called(matchID)
	if messages, ok := args.Get(0).([]models.ChatMessage); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) SaveMessage(msg *models.ChatMessage) error {
	return m.Called(msg).Error(0)
}

func (m *MockStorage) GetProfileByID(userID string) (*models.Profile, error) {
	args := m.Called(userID)
	if profile, ok := args.Get(0).(*models.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) SaveProfile(profile *models.Profile) error {
	return m.Called(profile).Error(0)
}

func (m *MockStorage) AddListeningHistory(userID, songID, genre string) error {
	return m.Called(userID, songID, genre).Error(0)
}

func (m *MockStorage) TopGenre(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
