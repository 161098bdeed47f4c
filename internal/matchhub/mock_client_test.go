package matchhub_test

import (
	"sync"

	"tunemate/backend/internal/models"
)

// MockClient buffers every event the engine pushes so tests can assert on
// them deterministically.
type MockClient struct {
	userID string
	send   chan models.ClientEvent

	mu     sync.Mutex
	events []models.ClientEvent
	closed bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID: userID,
		send:   make(chan models.ClientEvent, 64),
	}
}

func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) GetSendChannel() chan<- models.ClientEvent { return c.send }

func (c *MockClient) Run() {}

// Close closes the send channel the way WebSocketClient does, so tests
// exercise the same teardown the hub performs in production.
func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *MockClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// drain moves buffered events into the recorded slice.
func (c *MockClient) drain() {
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}
			c.events = append(c.events, ev)
		default:
			return
		}
	}
}

// eventsOfType returns every received event with the given type.
func (c *MockClient) eventsOfType(eventType string) []models.ClientEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drain()
	var out []models.ClientEvent
	for _, ev := range c.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
