// Package realtime distributes store change events to local subscribers.
// Each subsystem publishes and subscribes through the typed Bus without
// holding references to the others.
package realtime

import (
	"sync"

	"tunemate/backend/internal/models"
)

// ListenerChanged reports a mutation of the active-listener registry.
type ListenerChanged struct {
	Event    string
	Listener models.ActiveListener
}

// MatchCreated reports a new match row. Delivered broad, to every session —
// each one decides locally whether it is a participant. A row-level filter
// keyed to one user would miss the counterpart.
type MatchCreated struct {
	Match models.Match
}

// MatchRemoved reports an explicit match deletion.
type MatchRemoved struct {
	Match models.Match
}

// MessageReceived reports a chat message insert.
type MessageReceived struct {
	Message models.ChatMessage
}

// Bus is an in-process event bus with an independent subscriber list per
// event type. Subscribe calls return an unsubscribe func; failing to call it
// leaks the subscription, nothing more.
type Bus struct {
	mu     sync.RWMutex
	nextID int

	listenerSubs map[int]func(ListenerChanged)
	matchSubs    map[int]func(MatchCreated)
	removalSubs  map[int]func(MatchRemoved)
	messageSubs  map[int]func(MessageReceived)
}

func NewBus() *Bus {
	return &Bus{
		listenerSubs: make(map[int]func(ListenerChanged)),
		matchSubs:    make(map[int]func(MatchCreated)),
		removalSubs:  make(map[int]func(MatchRemoved)),
		messageSubs:  make(map[int]func(MessageReceived)),
	}
}

func (b *Bus) SubscribeListenerChanged(fn func(ListenerChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listenerSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listenerSubs, id)
	}
}

func (b *Bus) SubscribeMatchCreated(fn func(MatchCreated)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.matchSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.matchSubs, id)
	}
}

func (b *Bus) SubscribeMatchRemoved(fn func(MatchRemoved)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.removalSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.removalSubs, id)
	}
}

func (b *Bus) SubscribeMessageReceived(fn func(MessageReceived)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.messageSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.messageSubs, id)
	}
}

func (b *Bus) PublishListenerChanged(ev ListenerChanged) {
	for _, fn := range b.snapshotListenerSubs() {
		fn(ev)
	}
}

func (b *Bus) PublishMatchCreated(ev MatchCreated) {
	for _, fn := range b.snapshotMatchSubs() {
		fn(ev)
	}
}

func (b *Bus) PublishMatchRemoved(ev MatchRemoved) {
	for _, fn := range b.snapshotRemovalSubs() {
		fn(ev)
	}
}

func (b *Bus) PublishMessageReceived(ev MessageReceived) {
	for _, fn := range b.snapshotMessageSubs() {
		fn(ev)
	}
}

// Snapshots let handlers subscribe or unsubscribe from inside a callback
// without deadlocking on the bus lock.

func (b *Bus) snapshotListenerSubs() []func(ListenerChanged) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(ListenerChanged), 0, len(b.listenerSubs))
	for _, fn := range b.listenerSubs {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotMatchSubs() []func(MatchCreated) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(MatchCreated), 0, len(b.matchSubs))
	for _, fn := range b.matchSubs {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotRemovalSubs() []func(MatchRemoved) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(MatchRemoved), 0, len(b.removalSubs))
	for _, fn := range b.removalSubs {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotMessageSubs() []func(MessageReceived) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(MessageReceived), 0, len(b.messageSubs))
	for _, fn := range b.messageSubs {
		out = append(out, fn)
	}
	return out
}
