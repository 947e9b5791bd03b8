package events

import (
	"sync"
	"time"
)

// Topics published by the waitlist service. Every mutation that can change
// canonical queue order announces itself on TopicQueueChanged.
const (
	TopicQueueChanged    = "waitlist.queue_changed"
	TopicScheduleChanged = "schedule.changed"
)

// Event is a lightweight domain event.
type Event struct {
	Type       string
	EntryID    string
	OccurredAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for domain events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; a handler that must not block the publisher decides its
// own concurrency.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}
