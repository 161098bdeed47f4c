package matchhub

import (
	"sync"

	"tunemate/backend/internal/models"
)

// ConnectedUsers is the session-local view of users the owner has matched
// with. In-memory only; rebuilt every session from match rows and live
// notifications. Never contains the owner.
type ConnectedUsers struct {
	mu    sync.Mutex
	users []models.Profile
}

func NewConnectedUsers() *ConnectedUsers {
	return &ConnectedUsers{}
}

// Register appends a user unless it is the excluded id or already present.
// Reports whether the set changed.
func (c *ConnectedUsers) Register(user models.Profile, excludeID string) bool {
	if user.ID == excludeID {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.users {
		if c.users[i].ID == user.ID {
			return false
		}
	}
	c.users = append(c.users, user)
	return true
}

// Unregister removes a user by id.
func (c *ConnectedUsers) Unregister(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.users {
		if c.users[i].ID == userID {
			c.users = append(c.users[:i], c.users[i+1:]...)
			return
		}
	}
}

// List returns a copy of the current set.
func (c *ConnectedUsers) List() []models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Profile, len(c.users))
	copy(out, c.users)
	return out
}
