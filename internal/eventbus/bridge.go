package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ordersaga/internal/pkg/errs"
)

// Bridge turns the asynchronous bus into a synchronous call: it publishes a
// request event and suspends the caller until a response event with the same
// correlation id arrives, or the timeout expires.
//
// The pending slot is removed on every exit path, so repeated timeouts do not
// leak memory.
type Bridge struct {
	bus     *Bus
	pending sync.Map // correlationID -> chan Event (buffered, size 1)
	logger  *slog.Logger
}

func NewBridge(bus *Bus, logger *slog.Logger) *Bridge {
	return &Bridge{
		bus:    bus,
		logger: logger,
	}
}

// PublishAndAwait publishes the request event and blocks until a response
// tagged with the same correlation id is handed to HandleResponse.
//
// Exactly one of {response, error} is returned. ErrConcurrencyTimeout is
// returned when the timeout elapses first, ErrUnexpectedResponse when a
// response arrives whose kind differs from expectedKind. Neither is retried
// here; callers may resubmit with a fresh correlation id.
func (b *Bridge) PublishAndAwait(
	ctx context.Context,
	event CorrelatedEvent,
	expectedKind string,
	timeout time.Duration,
) (Event, error) {
	correlationID := event.CorrelationID()

	slot := make(chan Event, 1)
	if _, loaded := b.pending.LoadOrStore(correlationID, slot); loaded {
		return nil, errs.Newf("correlation id already in flight: %s", correlationID)
	}
	defer b.pending.Delete(correlationID)

	b.bus.Publish(event)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case response := <-slot:
		if response.Kind() != expectedKind {
			b.logger.Error("response kind mismatch",
				"correlation_id", correlationID,
				"expected", expectedKind,
				"got", response.Kind())
			return nil, errs.Mark(
				errs.Newf("expected %s, got %s", expectedKind, response.Kind()),
				errs.ErrUnexpectedResponse)
		}
		return response, nil

	case <-timer.C:
		b.logger.Warn("response wait timed out",
			"correlation_id", correlationID,
			"timeout", timeout)
		return nil, errs.Mark(
			errs.Newf("no response for correlation id %s within %s", correlationID, timeout),
			errs.ErrConcurrencyTimeout)

	case <-ctx.Done():
		return nil, errs.Wrap(ctx.Err(), "wait canceled")
	}
}

// HandleResponse completes the pending wait for the given correlation id.
// Late or duplicate responses find no slot and are logged as a warning; that
// is a normal race, never an error.
func (b *Bridge) HandleResponse(correlationID string, response Event) {
	value, ok := b.pending.Load(correlationID)
	if !ok {
		b.logger.Warn("no pending request for response",
			"correlation_id", correlationID,
			"kind", response.Kind())
		return
	}

	slot := value.(chan Event)
	select {
	case slot <- response:
	default:
		// Slot already filled by a duplicate; first response wins.
		b.logger.Warn("duplicate response dropped", "correlation_id", correlationID)
	}
}

// RouteResponses subscribes the bridge to the given response kinds so that
// owning subsystems only ever talk to the bus.
func (b *Bridge) RouteResponses(kinds ...string) {
	for _, kind := range kinds {
		b.bus.Subscribe(kind, func(event Event) {
			correlated, ok := event.(CorrelatedEvent)
			if !ok {
				b.logger.Warn("response event without correlation id", "kind", event.Kind())
				return
			}
			b.HandleResponse(correlated.CorrelationID(), event)
		})
	}
}
