// Package lifecyclebus implements a channel-based pub/sub broker for module
// lifecycle transitions (spec.md SPEC_FULL.md §2 C11's livestatus module),
// generalizing the teacher's internal/events/bus.go (a mutex-guarded map of
// EventType to callback subscribers) from callbacks to per-subscriber
// channels — the shape a WebSocket bridge that forwards events to a remote
// client actually wants to range over, rather than being invoked back
// inside the publisher's own goroutine.
package lifecyclebus

import (
	"sync"
	"time"

	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
)

// InterfaceID is the stable clienthub key a Bus is published under
// (spec.md §4.3, §9), so any module — e.g. modules/livestatus — can resolve
// it without depending on whoever constructed it.
const InterfaceID clienthub.InterfaceID = "hyperspot.lifecyclebus.Bus"

// EventType names a module lifecycle transition.
type EventType string

const (
	ModuleInitialized EventType = "module_initialized"
	ModuleStarted     EventType = "module_started"
	ModuleStopped     EventType = "module_stopped"
	ModuleTimeout     EventType = "module_timeout"
)

// Event is one lifecycle transition, timestamped at emission.
type Event struct {
	Type      EventType `json:"type"`
	Module    string    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
}

// Bus is the process-wide lifecycle event broker. The zero value is not
// usable; construct with NewBus.
type Bus struct {
	mu          sync.Mutex
	nextID      uint64
	subscribers map[uint64]chan Event
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[uint64]chan Event)}
}

// Subscribe registers a new subscriber and returns its event channel plus
// an unsubscribe function. The channel is buffered so a slow or gone
// subscriber never blocks Emit; events beyond the buffer are dropped for
// that subscriber rather than backpressuring the whole bus.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan Event, 64)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Emit publishes evt to every current subscriber, dropping it for any
// subscriber whose buffer is full.
func (b *Bus) Emit(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
