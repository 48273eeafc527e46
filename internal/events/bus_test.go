package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func publish(b *Bus, et EventType) {
	b.Publish(&Event{Type: et, Timestamp: time.Now(), Module: "test"})
}

func TestSubscribeReceivesMatchingType(t *testing.T) {
	b := NewBus()
	var got []EventType
	b.Subscribe(OrderExecuted, func(ev *Event) { got = append(got, ev.Type) })

	publish(b, OrderExecuted)
	publish(b, DayCompleted)

	assert.Equal(t, []EventType{OrderExecuted}, got)
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	b := NewBus()
	var count int
	b.SubscribeAll(func(ev *Event) { count++ })

	publish(b, OrderExecuted)
	publish(b, DayCompleted)

	assert.Equal(t, 2, count)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()

	var typed, all int
	unsubTyped := b.Subscribe(OrderExecuted, func(ev *Event) { typed++ })
	unsubAll := b.SubscribeAll(func(ev *Event) { all++ })

	publish(b, OrderExecuted)
	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, all)

	unsubTyped()
	unsubAll()
	publish(b, OrderExecuted)
	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, all)

	// unsubscribing twice is a no-op
	unsubAll()
	publish(b, OrderExecuted)
	assert.Equal(t, 1, all)
}

func TestUnsubscribeKeepsOtherHandlers(t *testing.T) {
	b := NewBus()

	var first, second int
	unsub := b.Subscribe(DayCompleted, func(ev *Event) { first++ })
	b.Subscribe(DayCompleted, func(ev *Event) { second++ })

	unsub()
	publish(b, DayCompleted)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}
