package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewFake(start)

	var order []string
	c.AfterFunc(30*time.Millisecond, func() { order = append(order, "b") })
	c.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(90*time.Millisecond, func() { order = append(order, "late") })

	c.Advance(50 * time.Millisecond)

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, start.Add(50*time.Millisecond), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestFakeStop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop reports already stopped")

	c.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestFakeCallbackSeesDeadlineAndCanReschedule(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewFake(start)

	var seen []time.Duration
	var tick func()
	tick = func() {
		seen = append(seen, c.Now().Sub(start))
		c.AfterFunc(100*time.Millisecond, tick)
	}
	c.AfterFunc(100*time.Millisecond, tick)

	c.Advance(350 * time.Millisecond)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}, seen)
}
