package storage

import (
	"encoding/json"
	"log"

	"tunemate/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// The change feed: every row mutation is announced as a models.Change on a
// per-table Redis channel, giving connected clients the subscribe-to-table-
// changes primitive the engine is built on. Publishing is fire-and-forget —
// a failed publish degrades realtime delivery, never the write itself.

const feedChannelPrefix = "feed:"

func feedChannel(table string) string {
	return feedChannelPrefix + table
}

func (s *Service) publish(table, event string, newRow, oldRow any) {
	if s.Redis == nil {
		return
	}

	change := models.Change{Table: table, Event: event}
	if newRow != nil {
		data, err := json.Marshal(newRow)
		if err != nil {
			log.Printf("ERROR: Failed to encode %s change: %v", table, err)
			return
		}
		change.New = data
	}
	if oldRow != nil {
		data, err := json.Marshal(oldRow)
		if err != nil {
			log.Printf("ERROR: Failed to encode %s change: %v", table, err)
			return
		}
		change.Old = data
	}

	payload, err := json.Marshal(change)
	if err != nil {
		log.Printf("ERROR: Failed to encode change record: %v", err)
		return
	}

	if err := s.Redis.Publish(s.Ctx, feedChannel(table), payload).Err(); err != nil {
		log.Printf("ERROR: Failed to publish %s change: %v", table, err)
	}
}

// SubscribeFeed subscribes to change records for every table.
func (s *Service) SubscribeFeed() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, feedChannelPrefix+"*")
}
