package service

import (
	"sync"

	"github.com/fync-app/fync-server/internal/model"
)

const sessionEventBuffer = 16

type sessionSubscriber struct {
	ch   chan model.SessionEvent
	done chan struct{}
}

// SessionEvents fans session state transitions out to subscribers. Delivery
// is asynchronous and at-least-once per transition for a draining consumer;
// a subscriber that stops draining blocks only its own channel.
type SessionEvents struct {
	mu   sync.Mutex
	subs map[int]*sessionSubscriber
	next int
}

// NewSessionEvents creates an empty event bus.
func NewSessionEvents() *SessionEvents {
	return &SessionEvents{
		subs: make(map[int]*sessionSubscriber),
	}
}

// Subscribe registers a subscriber and returns its event channel plus an
// unsubscribe func. The unsubscribe func must be called to stop delivery
// and release the subscriber; it is safe to call more than once.
func (e *SessionEvents) Subscribe() (<-chan model.SessionEvent, func()) {
	sub := &sessionSubscriber{
		ch:   make(chan model.SessionEvent, sessionEventBuffer),
		done: make(chan struct{}),
	}

	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = sub
	e.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
			close(sub.done)
		})
	}

	return sub.ch, unsubscribe
}

// Publish delivers the event to every current subscriber. The subscriber
// snapshot is taken under the lock but sends happen outside it, so a slow
// consumer cannot stall Subscribe or unsubscribe calls.
func (e *SessionEvents) Publish(event model.SessionEvent) {
	e.mu.Lock()
	subs := make([]*sessionSubscriber, 0, len(e.subs))
	for _, sub := range e.subs {
		subs = append(subs, sub)
	}
	e.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
		}
	}
}
