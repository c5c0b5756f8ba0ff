package eventbus_test

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/pkg/eventbus"
)

type createdEvent struct {
	ID int
}

type updatedEvent struct {
	ID int
}

func newBus() eventbus.EventBus {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(log)
}

func TestPublish_DeliversToMatchingHandlerOnly(t *testing.T) {
	bus := newBus()

	var created, updated int
	bus.Subscribe(func(ev createdEvent) { created++ })
	bus.Subscribe(func(ev updatedEvent) { updated++ })

	bus.Publish(createdEvent{ID: 1})
	bus.Publish(createdEvent{ID: 2})

	require.Equal(t, 2, created)
	require.Equal(t, 0, updated)
}

func TestPublish_PointerEvents(t *testing.T) {
	bus := newBus()

	var got *createdEvent
	bus.Subscribe(func(ev *createdEvent) { got = ev })

	bus.Publish(&createdEvent{ID: 7})

	require.NotNil(t, got)
	require.Equal(t, 7, got.ID)
}

func TestPublish_RecoversFromHandlerPanic(t *testing.T) {
	bus := newBus()

	bus.Subscribe(func(ev createdEvent) { panic("boom") })

	require.NotPanics(t, func() {
		bus.Publish(createdEvent{ID: 1})
	})
}

func TestPublishE_NoSubscribers(t *testing.T) {
	bus := newBus().(eventbus.EventBusWithError)

	err := bus.PublishE(createdEvent{ID: 1})
	require.ErrorIs(t, err, eventbus.ErrNoSubscribers)
}

func TestPublishE_PropagatesHandlerError(t *testing.T) {
	bus := newBus().(eventbus.EventBusWithError)

	want := errors.New("handler failed")
	bus.Subscribe(func(ev createdEvent) error { return want })

	err := bus.PublishE(createdEvent{ID: 1})
	require.ErrorIs(t, err, want)
}

func TestPublishE_RejectsNonErrorReturn(t *testing.T) {
	bus := newBus().(eventbus.EventBusWithError)

	bus.Subscribe(func(ev createdEvent) int { return 42 })

	err := bus.PublishE(createdEvent{ID: 1})
	require.ErrorIs(t, err, eventbus.ErrInvalidHandlerReturn)
}

func TestUnsubscribe(t *testing.T) {
	bus := newBus()

	calls := 0
	handler := func(ev createdEvent) { calls++ }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	require.Equal(t, 0, bus.SubscribersCount())

	bus.Publish(createdEvent{ID: 1})
	require.Equal(t, 0, calls)
}
