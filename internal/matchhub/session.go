package matchhub

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"tunemate/backend/internal/config"
	"tunemate/backend/internal/models"
	"tunemate/backend/internal/realtime"
	"tunemate/backend/internal/storage"
)

// Session owns every piece of matchmaking state for one connected user: the
// current match, the current chat with its open/closed flag, the
// connected-users view and the debounced match timer. UI consumers get a
// handle to the session instead of ambient shared state.
type Session struct {
	User models.Profile

	store  storage.Storage
	bus    *realtime.Bus
	client Client

	mu           sync.Mutex
	currentSong  *models.Song
	currentMatch *models.Profile
	currentChat  *models.Chat
	chatOpen     bool
	matchTimer   *time.Timer
	closed       bool

	Connected *ConnectedUsers

	unsubs []func()

	// Injection points for tests. Defaults: config constants and math/rand.
	Debounce time.Duration
	Settle   time.Duration
	RandIntN func(n int) int
}

func NewSession(user models.Profile, store storage.Storage, bus *realtime.Bus, client Client) *Session {
	return &Session{
		User:      user,
		store:     store,
		bus:       bus,
		client:    client,
		Connected: NewConnectedUsers(),
		Debounce:  config.MatchDebounce,
		Settle:    config.RealtimeSettleDelay,
		RandIntN:  rand.Intn,
	}
}

// Start wires the session into the realtime fan-out.
func (s *Session) Start() {
	s.unsubs = append(s.unsubs,
		s.bus.SubscribeListenerChanged(s.onListenerChanged),
		s.bus.SubscribeMatchCreated(s.onMatchCreated),
		s.bus.SubscribeMatchRemoved(s.onMatchRemoved),
		s.bus.SubscribeMessageReceived(s.onMessageReceived),
	)
}

// Close tears the session down: pending match timer cancelled, subscriptions
// removed, the user's registry rows flipped inactive. Once Close returns no
// handler pushes to the client anymore, so the hub may close the client's
// send channel.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.matchTimer != nil {
		s.matchTimer.Stop()
		s.matchTimer = nil
	}
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}

	if err := s.store.UnregisterActiveListener(s.User.ID); err != nil {
		log.Printf("ERROR: Failed to unregister listener on session close for %s: %v", s.User.ID, err)
	}
}

// LoadSong registers the user as the song's active listener and schedules a
// debounced match attempt. A song loaded before the previous timer fires
// replaces it — at most one pending attempt per session.
func (s *Session) LoadSong(song models.Song) {
	if err := s.store.RegisterActiveListener(s.User.ID, song.ID); err != nil {
		// Registry unavailability degrades matchmaking, never playback.
		log.Printf("ERROR: Failed to register active listener for %s: %v", s.User.ID, err)
	}
	if err := s.store.AddListeningHistory(s.User.ID, song.ID, song.Genre); err != nil {
		log.Printf("ERROR: Failed to record listening history for %s: %v", s.User.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.currentSong = &song
	if s.matchTimer != nil {
		s.matchTimer.Stop()
	}
	s.matchTimer = time.AfterFunc(s.Debounce, func() {
		s.FindMatch(song)
	})
}

// StopListening flips the user's registry rows inactive without ending the
// session. Cancels any pending match attempt.
func (s *Session) StopListening() {
	s.mu.Lock()
	if s.matchTimer != nil {
		s.matchTimer.Stop()
		s.matchTimer = nil
	}
	s.currentSong = nil
	s.mu.Unlock()

	if err := s.store.UnregisterActiveListener(s.User.ID); err != nil {
		log.Printf("ERROR: Failed to unregister listener for %s: %v", s.User.ID, err)
	}
}

// CurrentChat returns the chat projection and its open flag.
func (s *Session) CurrentChat() (*models.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChat, s.chatOpen
}

// CurrentMatch returns the profile of the currently matched peer, if any.
func (s *Session) CurrentMatch() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentMatch
}

// push delivers an event to the client without ever blocking the engine. A
// slow client just loses the event. The send happens under the session mutex
// with the closed flag checked, so an in-flight timer or store callback can
// never hit a channel the hub already closed. Callers must not hold s.mu.
func (s *Session) push(event models.ClientEvent) {
	if s.client == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.client.GetSendChannel() <- event:
	default:
		log.Printf("WARNING: Dropping %s event for slow client %s", event.Type, s.User.ID)
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// toast surfaces a fire-and-forget notification.
func (s *Session) toast(title, description string) {
	s.push(models.ClientEvent{
		Type:    "toast",
		Payload: models.Toast{Title: title, Description: description},
	})
}
