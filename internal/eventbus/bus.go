package eventbus

import (
	"log/slog"
	"sync"
)

// Event is anything that can travel on the in-process bus. Request/response
// events additionally carry a correlation id so the Bridge can pair them.
type Event interface {
	Kind() string
}

// CorrelatedEvent is an Event that belongs to a request/response exchange.
type CorrelatedEvent interface {
	Event
	CorrelationID() string
}

type Handler func(event Event)

// Bus is an in-process publish/subscribe dispatcher. Publishing never blocks
// the caller: each subscriber runs on its own goroutine, the same way the
// original system dispatched application events asynchronously.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Handler
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]Handler),
		logger: logger,
	}
}

// Subscribe registers a handler for every event of the given kind.
// Registration is expected at wiring time; handlers cannot be removed.
func (b *Bus) Subscribe(kind string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], h)
}

// Publish delivers the event to all subscribers of its kind, each on a fresh
// goroutine. Events without subscribers are dropped with a warning.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.subs[event.Kind()]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Warn("no subscriber for event", "kind", event.Kind())
		return
	}

	for _, h := range handlers {
		go h(event)
	}
}
