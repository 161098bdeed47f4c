package matchhub

import (
	"log"

	"tunemate/backend/internal/models"
)

// FindMatch pairs the session owner with one other active listener of the
// song. One pairwise pick per invocation, chosen uniformly at random;
// repeated invocations may pick different peers. Store errors abort the flow
// without partial state.
func (s *Session) FindMatch(song models.Song) {
	// The debounce timer can fire while the session is being torn down.
	if s.isClosed() {
		return
	}

	listeners, err := s.store.GetActiveListeners(song.ID, s.User.ID)
	if err != nil {
		return
	}

	if len(listeners) == 0 {
		log.Printf("No active listeners for song %s, no match for %s", song.ID, s.User.ID)
		s.push(models.ClientEvent{Type: "no_match", Payload: models.ListenerCount{SongID: song.ID}})
		s.toast("No Match Found", "No one is listening to this song right now. Try again later!")
		return
	}

	candidate := listeners[s.RandIntN(len(listeners))].UserID
	s.pairWith(candidate, song.ID)
}

// CheckForRealTimeMatch runs when the fan-out observes another user going
// active on a song. It re-verifies the owner's own listening state first so
// a stale registry row never produces a match.
func (s *Session) CheckForRealTimeMatch(songID, otherUserID string) {
	if songID == "" || otherUserID == "" || otherUserID == s.User.ID {
		return
	}
	// Settle-delay callbacks outlive unsubscription the same way the debounce
	// timer does.
	if s.isClosed() {
		return
	}

	listening, err := s.store.IsActivelyListening(s.User.ID, songID)
	if err != nil || !listening {
		return
	}

	s.pairWith(otherUserID, songID)
}

// pairWith reuses the existing match for this pair and song or creates a new
// row. Either way the chat ends up open on this side; the peer learns about a
// new row through its own match subscription.
func (s *Session) pairWith(otherUserID, songID string) {
	match, err := s.store.FindMatchByPair(s.User.ID, otherUserID, songID)
	if err != nil {
		return
	}

	created := false
	if match == nil {
		match = &models.Match{User1ID: s.User.ID, User2ID: otherUserID, SongID: songID}
		if err := s.store.CreateMatch(match); err != nil {
			// Lost the unique-index race to the peer's insert: the winning
			// row is the match.
			log.Printf("Match insert for %s/%s lost race, reusing existing row: %v", s.User.ID, otherUserID, err)
			match, err = s.store.FindMatchByPair(s.User.ID, otherUserID, songID)
			if err != nil || match == nil {
				return
			}
		} else {
			created = true
		}
	}

	s.fetchMatchDetails(otherUserID, match.ID, match.SongID)

	if created {
		s.toast("New Music Match!", "Someone is listening to the same song as you!")
	} else {
		s.toast("Match Found!", "You've already matched with this listener for this song.")
	}
}

// fetchMatchDetails loads the peer profile and the chat history, makes them
// the session's current match and chat, and forces the chat open.
func (s *Session) fetchMatchDetails(otherUserID, matchID, songID string) {
	peer, err := s.store.GetProfileByID(otherUserID)
	if err != nil || peer == nil {
		log.Printf("ERROR: Failed to fetch matched profile %s: %v", otherUserID, err)
		return
	}

	chat := s.loadChat(matchID)
	if chat == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.currentMatch = peer
	s.currentChat = chat
	s.chatOpen = true
	s.mu.Unlock()

	if s.Connected.Register(*peer, s.User.ID) {
		s.push(models.ClientEvent{Type: "connected_users", Payload: s.Connected.List()})
	}
	s.push(models.ClientEvent{Type: "match_found", Payload: peer})
	s.push(models.ClientEvent{Type: "chat", Payload: chat})
}
