package mocks

import (
	"context"
	"sync"

	"github.com/OwaisSafa/ChessVerse/internal/dependencies/emitter"
	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// Delivery is one event handed to the emitter
type Delivery struct {
	To    model.PlayerID
	Event model.OutboundEvent
}

// MockEmitter records every delivery for assertions
type MockEmitter struct {
	mu         sync.Mutex
	deliveries []Delivery
	failures   map[model.PlayerID]error
}

// Ensure MockEmitter implements Emitter
var _ emitter.Emitter = (*MockEmitter)(nil)

// NewMockEmitter creates a new MockEmitter
func NewMockEmitter() *MockEmitter {
	return &MockEmitter{failures: make(map[model.PlayerID]error)}
}

// Emit records the delivery, or returns the failure configured for the target
func (e *MockEmitter) Emit(_ context.Context, to model.PlayerID, ev model.OutboundEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.failures[to]; ok {
		return err
	}
	e.deliveries = append(e.deliveries, Delivery{To: to, Event: ev})
	return nil
}

// FailFor makes every delivery to the connection return err
func (e *MockEmitter) FailFor(to model.PlayerID, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[to] = err
}

// Deliveries returns every recorded delivery in order
func (e *MockEmitter) Deliveries() []Delivery {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Delivery, len(e.deliveries))
	copy(out, e.deliveries)
	return out
}

// EventsFor returns the events delivered to one connection in order
func (e *MockEmitter) EventsFor(to model.PlayerID) []model.OutboundEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.OutboundEvent
	for _, d := range e.deliveries {
		if d.To == to {
			out = append(out, d.Event)
		}
	}
	return out
}

// Last returns the most recent event delivered to the connection, or nil
func (e *MockEmitter) Last(to model.PlayerID) model.OutboundEvent {
	events := e.EventsFor(to)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

// Reset clears recorded deliveries
func (e *MockEmitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deliveries = nil
}
