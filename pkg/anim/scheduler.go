// Package anim drives timed work for a map: repeating and delayed tasks and tweens,
// all advanced explicitly by the host on its own goroutine.
package anim

import (
	"time"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// Task is a handle to scheduled work.
type Task struct {
	interval time.Duration
	next     time.Time
	repeat   bool
	frame    bool
	fn       func(now time.Time) bool
	done     bool
}

// Cancel stops the task. Cancelling twice is harmless.
func (t *Task) Cancel() {
	if t != nil {
		t.done = true
	}
}

// Active reports whether the task will run again.
func (t *Task) Active() bool {
	return t != nil && !t.done
}

// Scheduler runs tasks when Advance is called. It is not safe for concurrent use;
// everything happens on the goroutine that calls Advance.
type Scheduler struct {
	clock Clock
	tasks []*Task
}

func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler's notion of the current time.
func (s *Scheduler) Now() time.Time {
	return s.clock()
}

// Frame runs fn on every Advance until cancelled.
func (s *Scheduler) Frame(fn func(now time.Time)) *Task {
	return s.add(&Task{frame: true, repeat: true, fn: func(now time.Time) bool {
		fn(now)
		return true
	}})
}

// Every runs fn once per interval, first after one interval has elapsed.
func (s *Scheduler) Every(interval time.Duration, fn func(now time.Time)) *Task {
	if interval <= 0 {
		return s.Frame(fn)
	}
	return s.add(&Task{interval: interval, repeat: true, next: s.clock().Add(interval), fn: func(now time.Time) bool {
		fn(now)
		return true
	}})
}

// After runs fn once when delay has elapsed.
func (s *Scheduler) After(delay time.Duration, fn func(now time.Time)) *Task {
	return s.add(&Task{next: s.clock().Add(delay), fn: func(now time.Time) bool {
		fn(now)
		return false
	}})
}

func (s *Scheduler) add(t *Task) *Task {
	s.tasks = append(s.tasks, t)
	return t
}

// Advance runs every task due at now. Tasks scheduled by callbacks wait for the
// next call.
func (s *Scheduler) Advance(now time.Time) {
	due := make([]*Task, len(s.tasks))
	copy(due, s.tasks)
	for _, t := range due {
		if t.done {
			continue
		}
		if !t.frame && now.Before(t.next) {
			continue
		}
		again := t.fn(now)
		if !again || !t.repeat {
			t.done = true
			continue
		}
		if !t.frame {
			t.next = t.next.Add(t.interval)
			if !t.next.After(now) {
				t.next = now.Add(t.interval)
			}
		}
	}

	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}

// Len returns the number of active tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

// CancelAll cancels every task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.done = true
	}
	s.tasks = nil
}
