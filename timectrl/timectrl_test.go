package timectrl

import (
	"testing"
	"time"
)

func TestControllerSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewController(start, 1)

	newNow := start.Add(42 * time.Second)
	c.SetTime(newNow)

	if got := c.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestControllerStepWhilePlaying(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewController(start, 2) // 2 simulated minutes per wall second
	c.Play()

	c.Step(time.Second)

	want := start.Add(2 * time.Minute)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestControllerStepWhilePausedIsNoop(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewController(start, 2)

	c.Step(time.Second)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("paused controller advanced to %v", got)
	}
}

func TestControllerNegativeRatePlaysBackwards(t *testing.T) {
	start := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	c := NewController(start, -1)
	c.Play()

	c.Step(30 * time.Second)

	want := start.Add(-30 * time.Minute)
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestControllerListeners(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewController(start, 1)
	c.Play()

	var seen []time.Time
	c.AddListener(func(ts time.Time) { seen = append(seen, ts) })

	c.Step(time.Second)
	c.SetTime(start)

	if len(seen) != 2 {
		t.Fatalf("listener called %d times, want 2", len(seen))
	}
	if !seen[1].Equal(start) {
		t.Fatalf("second notification = %v, want %v", seen[1], start)
	}
}
