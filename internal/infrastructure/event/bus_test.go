package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	received   []shared.DomainEvent
	err        error
	panicWith  any
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("routes events to subscribed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		recorded := &testHandler{eventTypes: []string{"SettlementRecorded"}}
		other := &testHandler{eventTypes: []string{"SalesAreaModifierCreated"}}
		bus.Subscribe(recorded)
		bus.Subscribe(other)

		require.NoError(t, bus.Publish(ctx, newTestEvent("SettlementRecorded")))

		assert.Equal(t, 1, recorded.count())
		assert.Equal(t, 0, other.count())
		assert.Equal(t, int64(1), bus.Published())
	})

	t.Run("wildcard handlers receive everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		all := &testHandler{}
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 2, all.count())
	})

	t.Run("explicit event types override the handler's", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := &testHandler{eventTypes: []string{"A"}}
		bus.Subscribe(h, "B")

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		require.Equal(t, 1, h.count())
		assert.Equal(t, "B", h.received[0].EventType())
	})

	t.Run("handler errors are logged and reported, not returned", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		var hooked []string
		bus := NewInMemoryEventBus(zap.New(core), WithErrorHook(func(eventType string, err error) {
			hooked = append(hooked, eventType)
		}))
		failing := &testHandler{err: errors.New("boom")}
		after := &testHandler{}
		bus.Subscribe(failing)
		bus.Subscribe(after)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))

		assert.Equal(t, 1, after.count(), "later handlers still run")
		assert.Equal(t, []string{"A"}, hooked)
		assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
	})

	t.Run("panicking handler is recovered", func(t *testing.T) {
		var hookErr error
		bus := NewInMemoryEventBus(nil, WithErrorHook(func(_ string, err error) { hookErr = err }))
		bus.Subscribe(&testHandler{panicWith: "kaboom"})

		assert.NotPanics(t, func() {
			_ = bus.Publish(ctx, newTestEvent("A"))
		})
		var panicErr *HandlerPanicError
		require.ErrorAs(t, hookErr, &panicErr)
		assert.Equal(t, "kaboom", panicErr.Value)
	})

	t.Run("stopped bus drops events", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := &testHandler{}
		bus.Subscribe(h)

		require.NoError(t, bus.Stop(ctx))
		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 0, h.count())

		require.NoError(t, bus.Start(ctx))
		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("unsubscribed handler is skipped", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := &testHandler{eventTypes: []string{"A"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 0, h.count())
	})
}
