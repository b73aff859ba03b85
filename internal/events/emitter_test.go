package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireInRegistrationOrder(t *testing.T) {
	var e Emitter[int]
	var got []string
	e.Subscribe(func(int) { got = append(got, "first") })
	e.Subscribe(func(int) { got = append(got, "second") })

	e.Fire(1)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestUnsubscribeIsExactAndIdempotent(t *testing.T) {
	var e Emitter[string]
	a := 0
	b := 0
	unsubA := e.Subscribe(func(string) { a++ })
	e.Subscribe(func(string) { b++ })

	unsubA()
	unsubA()
	e.Fire("x")

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, e.ListenerCount())
}

func TestSubscribeDuringFireDoesNotReceiveCurrentEvent(t *testing.T) {
	var e Emitter[int]
	late := 0
	e.Subscribe(func(int) {
		e.Subscribe(func(int) { late++ })
	})

	e.Fire(1)
	assert.Equal(t, 0, late)

	e.Fire(2)
	assert.Equal(t, 1, late)
}
