package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToSubscriber(t *testing.T) {
	hub := NewHub(4)
	ch, cleanup := hub.Subscribe("u1")
	defer cleanup()

	n := hub.Publish("u1", Event{Event: "attendance.recorded", Data: "x"})
	assert.Equal(t, 1, n)

	got := <-ch
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "attendance.recorded", got.Event)

	assert.Equal(t, 0, hub.Publish("nobody", Event{Event: "ping"}))
}

func TestHub_PublishToManyDeduplicates(t *testing.T) {
	hub := NewHub(4)
	a, cleanA := hub.Subscribe("a")
	defer cleanA()
	b, cleanB := hub.Subscribe("b")
	defer cleanB()

	n := hub.PublishToMany([]string{"a", "b", "a", ""}, Event{Event: "e"})
	assert.Equal(t, 2, n)
	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestHub_FullBufferDropsEvent(t *testing.T) {
	hub := NewHub(1)
	_, cleanup := hub.Subscribe("u")
	defer cleanup()

	assert.Equal(t, 1, hub.Publish("u", Event{Event: "first"}))
	assert.Equal(t, 0, hub.Publish("u", Event{Event: "second"}))
}

func TestHub_CleanupAndCounts(t *testing.T) {
	hub := NewHub(0)
	_, c1 := hub.Subscribe("u")
	_, c2 := hub.Subscribe("u")
	_, c3 := hub.Subscribe("v")

	assert.Equal(t, 2, hub.SubscriberCount("u"))
	assert.Equal(t, 3, hub.TotalSubscribers())

	c1()
	c1() // idempotent
	assert.Equal(t, 1, hub.SubscriberCount("u"))

	c2()
	c3()
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(2)
	ch, cleanup := hub.Subscribe("u")

	hub.Close()
	_, open := <-ch
	assert.False(t, open)
	require.NotPanics(t, cleanup)

	late, _ := hub.Subscribe("u")
	_, open = <-late
	assert.False(t, open)
}
