package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(500*time.Millisecond, func() { fired++ })

	c.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)

	c.Advance(time.Second)
	assert.Equal(t, 1, fired, "one-shot timers fire once")
}

func TestFakeTimerStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	c.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeCallbacksFireInDeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "third") })
	c.AfterFunc(time.Second, func() { order = append(order, "first") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "second") })

	c.Advance(5 * time.Second)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestFakeTickerDropsOverflow(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(10 * time.Second)
	defer ticker.Stop()

	c.Advance(35 * time.Second)

	select {
	case <-ticker.C:
	default:
		t.Fatal("expected a buffered tick")
	}
	select {
	case <-ticker.C:
		t.Fatal("overflow ticks should be dropped")
	default:
	}
}

func TestFakeSetDoesNotFire(t *testing.T) {
	c := Fake(epoch)
	fired := false
	c.AfterFunc(time.Minute, func() { fired = true })

	c.Set(epoch.Add(time.Hour))
	assert.False(t, fired)
	assert.Equal(t, epoch.Add(time.Hour), c.Now())
}
