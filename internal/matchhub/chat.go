package matchhub

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"tunemate/backend/internal/config"
	"tunemate/backend/internal/models"
)

// loadChat assembles the chat projection for a match: full message log oldest
// first, with the welcome message synthesized and persisted when the log is
// empty and the match actually exists. Returns nil when the store failed or
// the owner is not a participant.
func (s *Session) loadChat(matchID string) *models.Chat {
	match, err := s.store.GetMatchByID(matchID)
	if err != nil {
		return nil
	}
	if match == nil || !match.Involves(s.User.ID) {
		return nil
	}

	messages, err := s.store.GetChatMessages(matchID)
	if err != nil {
		return nil
	}

	if len(messages) == 0 {
		// The row id is derived from the match so two sessions racing to open
		// the same empty chat cannot both insert a welcome: the loser fails on
		// the primary key and re-reads the winner's row.
		welcome := models.ChatMessage{
			ID:        "welcome-" + matchID,
			MatchID:   matchID,
			Content:   config.WelcomeMessage,
			CreatedAt: time.Now(),
		}
		if err := s.store.SaveMessage(&welcome); err == nil {
			messages = append(messages, welcome)
		} else if again, rerr := s.store.GetChatMessages(matchID); rerr == nil {
			// A failed insert with no winning row just leaves the log empty;
			// the next open synthesizes the welcome again.
			messages = again
		}
	}

	for i := range messages {
		messages[i].Delivery = models.DeliveryCommitted
	}

	return &models.Chat{
		ID:       matchID,
		MatchID:  matchID,
		Users:    [2]string{match.User1ID, match.User2ID},
		Messages: messages,
	}
}

// OpenChat loads the chat for a match and forces it open.
func (s *Session) OpenChat(matchID string) {
	chat := s.loadChat(matchID)
	if chat == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.currentChat = chat
	s.chatOpen = true
	s.mu.Unlock()

	s.push(models.ClientEvent{Type: "chat", Payload: chat})
}

// CloseChat transitions the chat to closed. Only an explicit user dismissal
// lands here; incoming matches and messages reopen it.
func (s *Session) CloseChat() {
	s.mu.Lock()
	s.chatOpen = false
	s.currentChat = nil
	s.currentMatch = nil
	s.mu.Unlock()

	s.push(models.ClientEvent{Type: "chat_closed"})
}

// SendMessage appends the message to the local log immediately and then
// persists it. Blank content or a closed chat is a no-op. A failed insert
// leaves the optimistic entry marked failed rather than rolling it back, so
// the divergence is visible on the entry itself.
func (s *Session) SendMessage(content string) {
	if strings.TrimSpace(content) == "" {
		return
	}

	s.mu.Lock()
	if !s.chatOpen || s.currentChat == nil {
		s.mu.Unlock()
		return
	}
	chat := s.currentChat
	receiver := chat.Users[0]
	if receiver == s.User.ID {
		receiver = chat.Users[1]
	}

	sender := s.User.ID
	msg := models.ChatMessage{
		ID:         uuid.New().String(),
		MatchID:    chat.MatchID,
		SenderID:   &sender,
		ReceiverID: &receiver,
		Content:    content,
		CreatedAt:  time.Now(),
		Delivery:   models.DeliveryPending,
	}
	chat.Append(msg)
	s.mu.Unlock()

	s.push(models.ClientEvent{Type: "message", Payload: msg})

	// The persisted receiver comes from the match row, not the projection.
	persisted := msg
	if match, err := s.store.GetMatchByID(chat.MatchID); err == nil && match != nil {
		if other := match.OtherUser(s.User.ID); other != "" {
			persisted.ReceiverID = &other
		}
	}

	state := models.DeliveryCommitted
	if err := s.store.SaveMessage(&persisted); err != nil {
		state = models.DeliveryFailed
	}

	s.mu.Lock()
	if s.currentChat != nil && s.currentChat.MatchID == msg.MatchID {
		s.currentChat.SetDelivery(msg.ID, state)
	}
	s.mu.Unlock()
}

// RemoveMatch deletes a match the owner participates in, cascading its
// messages. The peer observes the deletion through the fan-out.
func (s *Session) RemoveMatch(matchID string) {
	match, err := s.store.GetMatchByID(matchID)
	if err != nil || match == nil || !match.Involves(s.User.ID) {
		return
	}

	if err := s.store.DeleteMatch(matchID); err != nil {
		log.Printf("ERROR: Failed to remove match %s: %v", matchID, err)
		return
	}

	s.dropMatchLocally(*match)
}

// dropMatchLocally clears session state referring to a deleted match.
func (s *Session) dropMatchLocally(match models.Match) {
	other := match.OtherUser(s.User.ID)

	s.mu.Lock()
	if s.currentChat != nil && s.currentChat.MatchID == match.ID {
		s.currentChat = nil
		s.currentMatch = nil
		s.chatOpen = false
	}
	s.mu.Unlock()

	s.Connected.Unregister(other)
	s.push(models.ClientEvent{Type: "connected_users", Payload: s.Connected.List()})
	s.push(models.ClientEvent{Type: "chat_closed"})
}
