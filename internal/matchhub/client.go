package matchhub

import "tunemate/backend/internal/models"

// Client is the interface for one connected user transport. It abstracts the
// underlying connection so the hub and sessions can push events without
// knowing how they travel.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string

	// GetSendChannel returns the channel the hub pushes events into. It is a
	// send-only channel.
	GetSendChannel() chan<- models.ClientEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}
