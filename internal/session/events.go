package session

import (
	"sync"

	"github.com/google/uuid"
)

// EventType distinguishes auth state transitions.
type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event is one auth state change for one user.
type Event struct {
	Type   EventType
	UserID uuid.UUID
}

// Events is an explicit auth-change emitter replacing implicit global session
// state: handlers publish sign-in/sign-out, interested components subscribe
// with a paired unsubscribe tied to their own lifecycle.
type Events struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

// NewEvents creates an emitter with no subscribers.
func NewEvents() *Events {
	return &Events{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener and returns its channel plus the matching
// unsubscribe func. Unsubscribe closes the channel and is safe to call once.
func (e *Events) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.next
	e.next++
	ch := make(chan Event, 8)
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if sub, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers the event to every subscriber without blocking; a
// subscriber with a full buffer misses the event rather than stalling the
// publisher.
func (e *Events) Publish(evt Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
