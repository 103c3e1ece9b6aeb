package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventNodeCreated    EventType = "node_created"
	EventNodeUpdated    EventType = "node_updated"
	EventNodeDeleted    EventType = "node_deleted"
	EventEdgeCreated    EventType = "edge_created"
	EventEdgeUpdated    EventType = "edge_updated"
	EventEdgeDeleted    EventType = "edge_deleted"
	EventBatchGenerated EventType = "batch_generated"
	EventGraphHydrated  EventType = "graph_hydrated"
	EventGraphCleared   EventType = "graph_cleared"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventName names the event on the SSE stream
func (e Event) EventName() string {
	return string(e.Type)
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes ch from the bus. Once it returns no further events are
// sent on ch, so the caller may close it.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
