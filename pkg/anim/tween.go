package anim

import (
	"math"
	"time"
)

type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

// CubicInOut matches d3.easeCubicInOut, the default transition easing.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Tween interpolates one value from 0 to 1 over Duration after Delay.
type Tween struct {
	Delay    time.Duration
	Duration time.Duration
	Ease     Ease

	OnStart func()
	Update  func(t float64)
	OnEnd   func()
}

// Tween runs steps one after another as a single cancellable task. Each step
// starts when the previous one ends plus its own delay.
func (s *Scheduler) Tween(steps ...Tween) *Task {
	if len(steps) == 0 {
		return &Task{done: true}
	}
	start := s.clock()
	idx := 0
	started := false
	t := &Task{frame: true, repeat: true}
	t.fn = func(now time.Time) bool {
		for idx < len(steps) {
			step := steps[idx]
			begin := start.Add(step.Delay)
			if now.Before(begin) {
				return true
			}
			if !started {
				started = true
				if step.OnStart != nil {
					step.OnStart()
				}
				if t.done {
					return false
				}
			}
			p := 1.0
			if step.Duration > 0 {
				p = math.Min(1, float64(now.Sub(begin))/float64(step.Duration))
			}
			ease := step.Ease
			if ease == nil {
				ease = CubicInOut
			}
			if step.Update != nil {
				step.Update(ease(p))
			}
			if p < 1 {
				return true
			}
			if step.OnEnd != nil {
				step.OnEnd()
			}
			if t.done {
				return false
			}
			start = begin.Add(step.Duration)
			idx++
			started = false
		}
		return false
	}
	return s.add(t)
}
