package earth

import (
	"strings"

	"github.com/sudorandom/earth-viz/pkg/projection"
)

type Event string

const (
	EventAccelerated Event = "accelerated"
	EventPaused      Event = "paused"
	EventRendered    Event = "rendered"
	EventResumed     Event = "resumed"
	EventSlowed      Event = "slowed"

	eventMarkerData    Event = "marker-data"
	eventRoutesCreated Event = "routes-created"
)

// Events lists the events that can be subscribed to with On.
var Events = []Event{EventAccelerated, EventPaused, EventRendered, EventResumed, EventSlowed}

// Handler receives the active projection when an event fires.
type Handler func(p *projection.Projection)

// On subscribes h to a published event. Names are matched case-insensitively;
// unknown names and nil handlers are ignored and reported as false.
func (e *Earth) On(name string, h Handler) bool {
	if h == nil {
		return false
	}
	for _, ev := range Events {
		if strings.EqualFold(name, string(ev)) {
			e.handlers[ev] = append(e.handlers[ev], h)
			return true
		}
	}
	return false
}

func (e *Earth) fire(ev Event) {
	for _, fn := range e.internal[ev] {
		fn()
	}
	for _, h := range e.handlers[ev] {
		h(e.proj)
	}
	if ev == EventRendered && len(e.deferred) > 0 {
		run := e.deferred
		e.deferred = nil
		for _, fn := range run {
			fn()
		}
	}
}

// whenRendered runs fn now if the map is drawn, otherwise once after the next render.
func (e *Earth) whenRendered(fn func()) {
	if e.rendered {
		fn()
		return
	}
	e.deferred = append(e.deferred, fn)
}
