package anim

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) step(s *Scheduler, d time.Duration) {
	c.now = c.now.Add(d)
	s.Advance(c.now)
}

func newTestScheduler() (*Scheduler, *fakeClock) {
	c := &fakeClock{now: time.Unix(1000, 0)}
	return NewScheduler(c.Now), c
}

func TestEveryAndCancel(t *testing.T) {
	s, c := newTestScheduler()
	runs := 0
	task := s.Every(100*time.Millisecond, func(time.Time) { runs++ })

	c.step(s, 50*time.Millisecond)
	if runs != 0 {
		t.Errorf("expected no run before the interval, got %d", runs)
	}
	c.step(s, 50*time.Millisecond)
	c.step(s, 100*time.Millisecond)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}

	task.Cancel()
	c.step(s, time.Second)
	if runs != 2 {
		t.Errorf("cancelled task ran again: %d runs", runs)
	}
	if s.Len() != 0 {
		t.Errorf("expected no active tasks, got %d", s.Len())
	}
}

func TestAfterRunsOnce(t *testing.T) {
	s, c := newTestScheduler()
	runs := 0
	task := s.After(20*time.Millisecond, func(time.Time) { runs++ })
	c.step(s, 10*time.Millisecond)
	c.step(s, 10*time.Millisecond)
	c.step(s, 10*time.Millisecond)
	if runs != 1 {
		t.Errorf("expected exactly one run, got %d", runs)
	}
	if task.Active() {
		t.Error("one-shot task still active after running")
	}
}

func TestFrameAndCancelAll(t *testing.T) {
	s, c := newTestScheduler()
	frames := 0
	s.Frame(func(time.Time) { frames++ })
	s.Every(time.Millisecond, func(time.Time) {})
	for i := 0; i < 5; i++ {
		c.step(s, 16*time.Millisecond)
	}
	if frames != 5 {
		t.Errorf("expected 5 frames, got %d", frames)
	}
	s.CancelAll()
	c.step(s, 16*time.Millisecond)
	if frames != 5 || s.Len() != 0 {
		t.Errorf("CancelAll left work behind: frames=%d len=%d", frames, s.Len())
	}
}

func TestTaskScheduledDuringAdvanceWaits(t *testing.T) {
	s, c := newTestScheduler()
	inner := 0
	s.After(0, func(time.Time) {
		s.Frame(func(time.Time) { inner++ })
	})
	c.step(s, time.Millisecond)
	if inner != 0 {
		t.Errorf("task added during Advance ran in the same pass")
	}
	c.step(s, time.Millisecond)
	if inner != 1 {
		t.Errorf("expected 1 inner run, got %d", inner)
	}
}

func TestTweenSequence(t *testing.T) {
	s, c := newTestScheduler()
	var events []string
	var last float64
	s.Tween(
		Tween{
			Duration: 100 * time.Millisecond,
			Ease:     Linear,
			OnStart:  func() { events = append(events, "start1") },
			Update:   func(v float64) { last = v },
			OnEnd:    func() { events = append(events, "end1") },
		},
		Tween{
			Delay:    50 * time.Millisecond,
			Duration: 0,
			OnStart:  func() { events = append(events, "start2") },
			OnEnd:    func() { events = append(events, "end2") },
		},
	)

	c.step(s, 50*time.Millisecond)
	if math.Abs(last-0.5) > 1e-9 {
		t.Errorf("expected halfway value 0.5, got %v", last)
	}
	c.step(s, 50*time.Millisecond)
	if last != 1 {
		t.Errorf("expected final value 1, got %v", last)
	}
	c.step(s, 20*time.Millisecond)
	if len(events) != 2 {
		t.Errorf("second step started before its delay: %v", events)
	}
	c.step(s, 40*time.Millisecond)
	want := []string{"start1", "end1", "start2", "end2"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}
	if s.Len() != 0 {
		t.Errorf("finished tween still scheduled")
	}
}

func TestTweenCancel(t *testing.T) {
	s, c := newTestScheduler()
	ended := false
	task := s.Tween(Tween{Duration: 100 * time.Millisecond, OnEnd: func() { ended = true }})
	c.step(s, 10*time.Millisecond)
	task.Cancel()
	c.step(s, time.Second)
	if ended {
		t.Error("cancelled tween reached its end")
	}
}

func TestCubicInOut(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{0, 0}, {0.5, 0.5}, {1, 1}, {0.25, 0.0625},
	} {
		if got := CubicInOut(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("CubicInOut(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
