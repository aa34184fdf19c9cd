package earth

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sudorandom/earth-viz/pkg/geo"
)

// Rate is a velocity change: an absolute amount in degrees per millisecond, or a
// percentage of the current velocity.
type Rate struct {
	Value   float64
	Percent bool
}

// ParseRate reads "0.01" or "10%". Anything unparseable is the zero Rate, which
// applies the default step.
func ParseRate(s string) Rate {
	s = strings.TrimSpace(s)
	pct := strings.Contains(s, "%")
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, "%", ""), 64)
	if err != nil {
		return Rate{}
	}
	return Rate{Value: v, Percent: pct}
}

func (r Rate) amount(velocity float64) float64 {
	v := r.Value
	if r.Percent {
		v = v / 100 * velocity
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return defaultRate
	}
	return v
}

// Start (re)starts the rotation and resets the tick reference so a long pause does
// not turn into a jump.
func (e *Earth) Start() {
	e.lastTick = e.clock()
	e.running = true
	e.stopped = false
}

// Pause suspends rotation until the next Start or Resume.
func (e *Earth) Pause() {
	e.running = false
	e.fire(EventPaused)
}

func (e *Earth) Resume() {
	e.Start()
	e.fire(EventResumed)
}

// Stop halts rotation until an explicit Start.
func (e *Earth) Stop() {
	e.stopped = true
}

func (e *Earth) endRotation() {
	e.stopped = true
	e.running = false
}

// IncreaseVelocity speeds the rotation up by r.
func (e *Earth) IncreaseVelocity(r Rate) float64 {
	e.velocity += r.amount(e.velocity)
	e.fire(EventAccelerated)
	return e.velocity
}

// DecreaseVelocity slows the rotation down by r, never below 0.01 degrees per ms.
// At the floor it does nothing.
func (e *Earth) DecreaseVelocity(r Rate) float64 {
	if e.velocity <= minVelocity {
		return e.velocity
	}
	e.velocity = math.Max(e.velocity-r.amount(e.velocity), minVelocity)
	e.fire(EventSlowed)
	return e.velocity
}

// SetVelocity sets the rotation speed in degrees per millisecond.
func (e *Earth) SetVelocity(v float64) float64 {
	if v >= minVelocity && !math.IsInf(v, 0) {
		e.velocity = v
	}
	return e.velocity
}

func (e *Earth) startSpin() {
	e.spin.Cancel()
	e.spin = e.sched.Frame(e.tick)
}

func (e *Earth) tick(now time.Time) {
	if e.rendered && e.Rotatable() && e.running && !e.stopped {
		elapsed := float64(now.Sub(e.lastTick)) / float64(time.Millisecond)
		e.location[0] += e.velocity * elapsed
		e.location = geo.Normalize(e.location)
		e.rotateTo(e.location)
	}
	e.lastTick = now
}

// rotateTo applies a rotation to the active projection and redraws the paths that
// follow it.
func (e *Earth) rotateTo(l geo.Location) {
	if e.proj == nil {
		return
	}
	e.proj.SetRotate(l)
	e.reproject(e.proj)
}

// DragDelta converts a pointer movement into a rotation change: a full surface
// width is 180 degrees of longitude and -90 degrees of latitude.
func DragDelta(width int, dx, dy float64) (dLambda, dPhi float64) {
	if width <= 0 {
		return 0, 0
	}
	w := float64(width)
	return dx * 180 / w, -dy * 90 / w
}

func (e *Earth) DragStart() {
	e.dragging = true
	e.Pause()
}

func (e *Earth) Drag(dx, dy float64) {
	if !e.rendered {
		return
	}
	dl, dp := DragDelta(e.width, dx, dy)
	e.location = geo.Normalize(geo.Location{e.location[0] + dl, e.location[1] + dp, e.location[2]})
	e.rotateTo(e.location)
}

// DragEnd resumes rotation for globes. Flat maps stay where they were dragged.
func (e *Earth) DragEnd() {
	e.dragging = false
	e.lastTick = e.clock()
	if e.Rotatable() {
		e.Start()
	}
}

// Dragging reports whether a drag gesture is in progress.
func (e *Earth) Dragging() bool { return e.dragging }

// RotateTo turns the map to a location immediately.
func (e *Earth) RotateTo(l geo.Location) {
	e.location = geo.Normalize(l)
	e.rotateTo(e.location)
}
