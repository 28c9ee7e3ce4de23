package storetest

import (
	"context"
	"sync"
)

// Event is one call recorded by Events.
type Event struct {
	Type    string
	Payload any
}

// Events records published notification events.
type Events struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (e *Events) Publish(_ context.Context, typ string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.events = append(e.events, Event{Type: typ, Payload: payload})
	return nil
}

// Recorded returns a copy of the events published so far.
func (e *Events) Recorded() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Event(nil), e.events...)
}
