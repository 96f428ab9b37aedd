package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowReturnsCurrentTime(t *testing.T) {
	before := time.Now()
	result := Now()
	after := time.Now()
	assert.False(t, result.Before(before))
	assert.False(t, result.After(after))
}

func TestMockClockAdvance(t *testing.T) {
	start := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())
	assert.Equal(t, time.Hour, c.Since(start))

	later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestMockClockAfter(t *testing.T) {
	start := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	short := c.After(time.Minute)
	long := c.After(time.Hour)
	assert.Equal(t, 2, c.Waiters())

	c.Advance(30 * time.Second)
	select {
	case <-short:
		t.Fatal("fired early")
	default:
	}

	c.Advance(30 * time.Second)
	select {
	case got := <-short:
		assert.Equal(t, start.Add(time.Minute), got)
	default:
		t.Fatal("did not fire")
	}
	assert.Equal(t, 1, c.Waiters())

	c.Advance(time.Hour)
	<-long
	assert.Zero(t, c.Waiters())
}

func TestMockClockAfterNonPositive(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	select {
	case <-c.After(0):
	default:
		t.Fatal("zero duration should fire at once")
	}
}

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
	<-c.After(time.Millisecond)
}
