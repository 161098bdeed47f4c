package models

// Chat is the session-side projection of a match and its ordered message log.
// It is assembled from the Match and ChatMessage tables on demand and held by
// the owning session, never stored.
type Chat struct {
	ID       string        `json:"id"`
	MatchID  string        `json:"match_id"`
	Users    [2]string     `json:"users"`
	Messages []ChatMessage `json:"messages"`
}

// Append adds a message to the end of the local log.
func (c *Chat) Append(msg ChatMessage) {
	c.Messages = append(c.Messages, msg)
}

// Has reports whether the log already contains a message with the given ID.
// Used to drop realtime echoes of optimistically shown messages.
func (c *Chat) Has(messageID string) bool {
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			return true
		}
	}
	return false
}

// SetDelivery updates the delivery state of a local log entry in place.
func (c *Chat) SetDelivery(messageID, state string) {
	for i := range c.Messages {
		if c.Messages[i].ID == messageID {
			c.Messages[i].Delivery = state
			return
		}
	}
}
