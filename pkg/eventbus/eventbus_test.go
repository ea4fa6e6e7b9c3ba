package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestBus_PublishCallsSubscribers(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32

	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("ошибка слушателя не мешает остальным")
	})
	bus.Subscribe("b", func(ctx context.Context, event Event) error {
		panic("не должен вызываться")
	})

	bus.Publish(context.Background(), testEvent{name: "a"})
	bus.Wait()

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestBus_PanicIsRecovered(t *testing.T) {
	bus := New(zap.NewNop())
	bus.Subscribe("x", func(ctx context.Context, event Event) error { panic("boom") })

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), testEvent{name: "x"})
		bus.Wait()
	})
}
