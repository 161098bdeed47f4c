package realtime

import (
	"encoding/json"
	"log"

	"tunemate/backend/internal/models"
	"tunemate/backend/internal/storage"
)

// StartFeedListener bridges the store's Redis change feed onto the typed bus.
// Runs until the subscription is closed. Malformed records are logged and
// skipped.
func StartFeedListener(s *storage.Service, bus *Bus) {
	go func() {
		pubsub := s.SubscribeFeed()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var change models.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Printf("ERROR: Failed to decode change record: %v", err)
				continue
			}
			Dispatch(bus, change)
		}
	}()
}

// Dispatch decodes one change record into its typed event and publishes it.
func Dispatch(bus *Bus, change models.Change) {
	switch change.Table {
	case models.TableActiveListeners:
		var listener models.ActiveListener
		if err := json.Unmarshal(change.New, &listener); err != nil {
			log.Printf("ERROR: Failed to decode active_listeners change: %v", err)
			return
		}
		bus.PublishListenerChanged(ListenerChanged{Event: change.Event, Listener: listener})

	case models.TableMatches:
		switch change.Event {
		case models.EventInsert:
			var match models.Match
			if err := json.Unmarshal(change.New, &match); err != nil {
				log.Printf("ERROR: Failed to decode matches change: %v", err)
				return
			}
			bus.PublishMatchCreated(MatchCreated{Match: match})
		case models.EventDelete:
			var match models.Match
			if err := json.Unmarshal(change.Old, &match); err != nil {
				log.Printf("ERROR: Failed to decode matches delete: %v", err)
				return
			}
			bus.PublishMatchRemoved(MatchRemoved{Match: match})
		}

	case models.TableChatMessages:
		if change.Event != models.EventInsert {
			return
		}
		var message models.ChatMessage
		if err := json.Unmarshal(change.New, &message); err != nil {
			log.Printf("ERROR: Failed to decode chat_messages change: %v", err)
			return
		}
		bus.PublishMessageReceived(MessageReceived{Message: message})
	}
}
