package chat

import (
	"log"
	"sync"
	"time"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
)

// EventType names a session change reported to the UI layer.
type EventType string

const (
	EventMessageAppended EventType = "message.appended"
	EventActionSettled   EventType = "action.settled"
	EventDispatchFailed  EventType = "dispatch.failed"
	EventSessionReset    EventType = "session.reset"
	EventBusyChanged     EventType = "session.busy"
	EventViewChanged     EventType = "session.view"
)

// Event is a single notification about a session.
type Event struct {
	Type           EventType     `json:"type"`
	SessionID      string        `json:"sessionId,omitempty"`
	Message        *chat.Message `json:"message,omitempty"`
	Busy           bool          `json:"busy"`
	ActiveCategory string        `json:"activeCategory,omitempty"`
	Expanded       bool          `json:"expanded,omitempty"`
	Error          string        `json:"error,omitempty"`
	At             time.Time     `json:"at"`
}

// Notifier receives session events. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(evt).
func (f NotifierFunc) Notify(evt Event) {
	f(evt)
}

// Broadcaster fans events out to subscribers. Slow subscribers lose events
// instead of stalling the dispatch path.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	sink   Notifier
}

// NewBroadcaster creates a broadcaster forwarding every event to sink as well.
// sink may be nil.
func NewBroadcaster(sink Notifier) *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan Event),
		sink: sink,
	}
}

// Subscribe registers a buffered channel. The returned cancel func closes it.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Notify implements Notifier.
func (b *Broadcaster) Notify(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	if b.sink != nil {
		b.sink.Notify(evt)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("[chat] subscriber %d is full, dropping %s event", id, evt.Type)
		}
	}
}

// Close drops every subscriber.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
