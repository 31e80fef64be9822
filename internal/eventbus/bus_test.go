package eventbus

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	kind   string
	corrID string
}

func (e *testEvent) Kind() string          { return e.kind }
func (e *testEvent) CorrelationID() string { return e.corrID }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(newTestLogger())

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	received := 0
	handler := func(Event) {
		mu.Lock()
		received++
		mu.Unlock()
		wg.Done()
	}
	bus.Subscribe("thing.happened", handler)
	bus.Subscribe("thing.happened", handler)

	bus.Publish(&testEvent{kind: "thing.happened"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscribers not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, received)
}

func TestBus_PublishWithoutSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus(newTestLogger())

	done := make(chan struct{})
	go func() {
		bus.Publish(&testEvent{kind: "nobody.listens"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
}

func TestBus_RoutesByKind(t *testing.T) {
	bus := NewBus(newTestLogger())

	got := make(chan string, 1)
	bus.Subscribe("a", func(e Event) { got <- e.Kind() })
	bus.Subscribe("b", func(e Event) { t.Error("wrong subscriber invoked") })

	bus.Publish(&testEvent{kind: "a"})

	select {
	case kind := <-got:
		assert.Equal(t, "a", kind)
	case <-time.After(time.Second):
		t.Fatal("subscriber not invoked")
	}
}
