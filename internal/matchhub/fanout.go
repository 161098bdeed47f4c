package matchhub

import (
	"time"

	"tunemate/backend/internal/models"
	"tunemate/backend/internal/realtime"
)

// Per-session fan-out handlers. All change events arrive broad; relevance is
// re-derived locally so both participants of a match react to the same
// symmetric insert.

func (s *Session) onListenerChanged(ev realtime.ListenerChanged) {
	songID := ev.Listener.SongID
	if songID == "" {
		return
	}

	if count, err := s.store.GetActiveListenerCount(songID); err == nil {
		s.push(models.ClientEvent{
			Type:    "listener_count",
			Payload: models.ListenerCount{SongID: songID, Count: count},
		})
	}

	// Another user going active is a match opportunity. Give both sides'
	// writes a moment to settle before checking.
	if ev.Listener.IsActive && ev.Listener.UserID != s.User.ID {
		otherID := ev.Listener.UserID
		time.AfterFunc(s.Settle, func() {
			s.CheckForRealTimeMatch(songID, otherID)
		})
	}
}

func (s *Session) onMatchCreated(ev realtime.MatchCreated) {
	if !ev.Match.Involves(s.User.ID) {
		return
	}

	other := ev.Match.OtherUser(s.User.ID)
	s.fetchMatchDetails(other, ev.Match.ID, ev.Match.SongID)

	if peer := s.CurrentMatch(); peer != nil && peer.ID == other {
		s.toast("New Music Match!", "You've matched with "+peer.Name+"!")
	}
}

func (s *Session) onMatchRemoved(ev realtime.MatchRemoved) {
	if !ev.Match.Involves(s.User.ID) {
		return
	}
	s.dropMatchLocally(ev.Match)
}

func (s *Session) onMessageReceived(ev realtime.MessageReceived) {
	msg := ev.Message

	// Only messages addressed to the owner matter; own messages were already
	// shown optimistically.
	if msg.ReceiverID == nil || *msg.ReceiverID != s.User.ID {
		return
	}
	if msg.SentBy(s.User.ID) {
		return
	}

	s.mu.Lock()
	open := s.chatOpen && s.currentChat != nil && s.currentChat.MatchID == msg.MatchID
	if open && !s.currentChat.Has(msg.ID) {
		msg.Delivery = models.DeliveryCommitted
		s.currentChat.Append(msg)
	}
	s.mu.Unlock()

	if open {
		s.push(models.ClientEvent{Type: "message", Payload: msg})
	} else {
		// Chat closed or bound to another match: load the full log, which
		// includes this message, and force it open.
		s.OpenChat(msg.MatchID)
	}

	if msg.SenderID != nil {
		if sender, err := s.store.GetProfileByID(*msg.SenderID); err == nil && sender != nil {
			s.toast("New Message", sender.Name+" sent you a message")
		}
	}
}
