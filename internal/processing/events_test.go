package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus()
	_, ch := bus.Subscribe(8)

	bus.Publish(EventCompressionFired, map[string]float64{"ratio": 10.0})

	event := <-ch
	require.Equal(t, EventCompressionFired, event.Type)
	assert.InDelta(t, 10.0, event.Fields["ratio"], 1e-9)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	id, ch := bus.Subscribe(8)

	bus.Unsubscribe(id)

	// Канал закрыт, публикации не паникуют
	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, func() {
		bus.Publish(EventRangeUpdated, nil)
	})
}

func TestEventBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewEventBus()
	_, ch := bus.Subscribe(1)

	// Переполненный подписчик пропускает события, отправитель не блокируется
	bus.Publish(EventRangeUpdated, nil)
	bus.Publish(EventRangeUpdated, nil)
	bus.Publish(EventRangeUpdated, nil)

	assert.Len(t, ch, 1)
}

func TestEventBus_NilBusIsSafe(t *testing.T) {
	var bus *EventBus

	assert.NotPanics(t, func() {
		bus.Publish(EventTemperatureAnomaly, nil)
	})
}
