package matchhub_test

import (
	"errors"
	"sort"
	"sync"
	"time"

	"tunemate/backend/internal/models"
	"tunemate/backend/internal/realtime"
	"tunemate/backend/internal/storage"
)

// memStorage is an in-memory Storage with the same observable behavior as the
// real service: deactivate-then-insert registry writes, a unique index on the
// normalized match pair, ascending message order and synchronous change-feed
// publication onto the bus.
type memStorage struct {
	mu  sync.Mutex
	bus *realtime.Bus

	listeners []models.ActiveListener
	matches   map[string]models.Match
	messages  []models.ChatMessage
	profiles  map[string]models.Profile
	history   []models.ListeningHistory

	// error/latency injection
	failSaveMessage  bool
	failGetListeners bool
	onCreateMatch    func() // runs between the uniqueness check and the insert
	onSaveMessage    func() // runs before the insert, once

	// When set, GetActiveListeners signals listenerEntered and then blocks
	// until listenerGate is closed. Simulates a store call in flight while the
	// session is torn down.
	listenerGate    chan struct{}
	listenerEntered chan struct{}

	listenerQueries map[string]int // songID -> GetActiveListeners calls
}

var _ storage.Storage = (*memStorage)(nil)

func newMemStorage(bus *realtime.Bus) *memStorage {
	return &memStorage{
		bus:             bus,
		matches:         make(map[string]models.Match),
		profiles:        make(map[string]models.Profile),
		listenerQueries: make(map[string]int),
	}
}

func (m *memStorage) addProfile(id, name string) models.Profile {
	p := models.Profile{ID: id, Name: name, Email: id + "@example.com"}
	m.mu.Lock()
	m.profiles[id] = p
	m.mu.Unlock()
	return p
}

func (m *memStorage) RegisterActiveListener(userID, songID string) error {
	listener := models.ActiveListener{
		ID:        userID + "/" + songID + "/" + time.Now().String(),
		UserID:    userID,
		SongID:    songID,
		StartedAt: time.Now(),
		IsActive:  true,
	}

	m.mu.Lock()
	for i := range m.listeners {
		if m.listeners[i].UserID == userID {
			m.listeners[i].IsActive = false
		}
	}
	m.listeners = append(m.listeners, listener)
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.PublishListenerChanged(realtime.ListenerChanged{Event: models.EventInsert, Listener: listener})
	}
	return nil
}

func (m *memStorage) UnregisterActiveListener(userID string) error {
	var last *models.ActiveListener

	m.mu.Lock()
	for i := range m.listeners {
		if m.listeners[i].UserID == userID && m.listeners[i].IsActive {
			m.listeners[i].IsActive = false
			copied := m.listeners[i]
			last = &copied
		}
	}
	m.mu.Unlock()

	if last != nil && m.bus != nil {
		m.bus.PublishListenerChanged(realtime.ListenerChanged{Event: models.EventUpdate, Listener: *last})
	}
	return nil
}

func (m *memStorage) GetActiveListenerCount(songID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for i := range m.listeners {
		if m.listeners[i].SongID == songID && m.listeners[i].IsActive {
			count++
		}
	}
	return count, nil
}

func (m *memStorage) GetActiveListeners(songID, excludeUserID string) ([]models.ActiveListener, error) {
	if m.listenerGate != nil {
		if m.listenerEntered != nil {
			m.listenerEntered <- struct{}{}
		}
		<-m.listenerGate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.listenerQueries[songID]++
	if m.failGetListeners {
		return nil, errors.New("store unavailable")
	}
	var out []models.ActiveListener
	for i := range m.listeners {
		l := m.listeners[i]
		if l.SongID == songID && l.IsActive && l.UserID != excludeUserID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStorage) IsActivelyListening(userID, songID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.listeners {
		l := m.listeners[i]
		if l.UserID == userID && l.SongID == songID && l.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStorage) FindMatchByPair(userA, userB, songID string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findPairLocked(userA, userB, songID), nil
}

func (m *memStorage) findPairLocked(userA, userB, songID string) *models.Match {
	for _, match := range m.matches {
		if match.SongID != songID {
			continue
		}
		if (match.User1ID == userA && match.User2ID == userB) ||
			(match.User1ID == userB && match.User2ID == userA) {
			copied := match
			return &copied
		}
	}
	return nil
}

func (m *memStorage) CreateMatch(match *models.Match) error {
	if hook := m.onCreateMatch; hook != nil {
		m.onCreateMatch = nil
		hook()
	}

	if err := match.BeforeCreate(nil); err != nil {
		return err
	}

	m.mu.Lock()
	if existing := m.findPairLocked(match.User1ID, match.User2ID, match.SongID); existing != nil {
		m.mu.Unlock()
		return errors.New(`duplicate key value violates unique constraint "uq_match_pair"`)
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}
	m.matches[match.ID] = *match
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.PublishMatchCreated(realtime.MatchCreated{Match: *match})
	}
	return nil
}

func (m *memStorage) GetMatchByID(matchID string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if match, ok := m.matches[matchID]; ok {
		return &match, nil
	}
	return nil, nil
}

func (m *memStorage) DeleteMatch(matchID string) error {
	m.mu.Lock()
	match, ok := m.matches[matchID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.matches, matchID)
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.MatchID != matchID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.PublishMatchRemoved(realtime.MatchRemoved{Match: match})
	}
	return nil
}

func (m *memStorage) MatchesForUser(userID string) ([]models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Match
	for _, match := range m.matches {
		if match.Involves(userID) {
			out = append(out, match)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStorage) GetChatMessages(matchID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for _, msg := range m.messages {
		if msg.MatchID == matchID {
			msg.Delivery = ""
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStorage) SaveMessage(msg *models.ChatMessage) error {
	if hook := m.onSaveMessage; hook != nil {
		m.onSaveMessage = nil
		hook()
	}

	if m.failSaveMessage {
		return errors.New("store unavailable")
	}
	if err := msg.BeforeCreate(nil); err != nil {
		return err
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	stored := *msg
	stored.Delivery = ""
	m.mu.Lock()
	for i := range m.messages {
		if m.messages[i].ID == stored.ID {
			m.mu.Unlock()
			return errors.New(`duplicate key value violates unique constraint "chat_messages_pkey"`)
		}
	}
	m.messages = append(m.messages, stored)
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.PublishMessageReceived(realtime.MessageReceived{Message: stored})
	}
	return nil
}

func (m *memStorage) GetProfileByID(userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *memStorage) SaveProfile(profile *models.Profile) error {
	if err := profile.BeforeCreate(nil); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *memStorage) AddListeningHistory(userID, songID, genre string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, models.ListeningHistory{
		UserID: userID, SongID: songID, Genre: genre, ListenedAt: time.Now(),
	})
	return nil
}

func (m *memStorage) TopGenre(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, h := range m.history {
		if h.UserID == userID && h.Genre != "" {
			counts[h.Genre]++
		}
	}
	top, best := "", 0
	for genre, n := range counts {
		if n > best {
			top, best = genre, n
		}
	}
	return top, nil
}

// helpers for assertions

func (m *memStorage) matchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches)
}

func (m *memStorage) messageCount(matchID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, msg := range m.messages {
		if msg.MatchID == matchID {
			count++
		}
	}
	return count
}

func (m *memStorage) activeRowsFor(userID string) []models.ActiveListener {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActiveListener
	for _, l := range m.listeners {
		if l.UserID == userID && l.IsActive {
			out = append(out, l)
		}
	}
	return out
}

func (m *memStorage) queriesFor(songID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listenerQueries[songID]
}
