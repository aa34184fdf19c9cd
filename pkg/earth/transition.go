package earth

import (
	"time"

	"github.com/sudorandom/earth-viz/pkg/anim"
	"github.com/sudorandom/earth-viz/pkg/geo"
	"github.com/sudorandom/earth-viz/pkg/projection"
)

// TransitionTo morphs the map into another style over d, or 750ms when d is not
// positive. Every country and the ocean move in a straight line from where the
// current projection draws them to where the target draws them. Markers are removed
// for the duration and drawn again once the last path arrives. Unknown styles and
// unrendered maps are ignored.
func (e *Earth) TransitionTo(style string, d time.Duration) {
	target, ok := e.registry.Resolve(style)
	if !ok || !e.rendered || e.proj == nil {
		return
	}
	if d <= 0 {
		d = defaultTransition
	}

	e.cancelTransitions()
	dst := target.New()
	dst.SetScale(e.scaleFor(target))
	dst.SetTranslate(e.center())

	e.endRotation()
	e.deleteMarkers()
	e.location = geo.Location{}
	src := e.proj
	src.SetRotate(e.location)
	e.reproject(src)

	paths := e.reprojectable()
	e.transitioning = true
	remaining := len(paths)
	finish := func() {
		remaining--
		if remaining > 0 {
			return
		}
		e.transitions = nil
		e.transitioning = false
		e.style = target
		e.proj = dst
		e.reproject(dst)
		e.drawMarkers()
		e.Start()
	}
	if remaining == 0 {
		remaining = 1
		finish()
		return
	}
	for _, path := range paths {
		path := path
		blend := projection.Blend(src, dst)
		e.transitions = append(e.transitions, e.sched.Tween(anim.Tween{
			Duration: d,
			Update: func(t float64) {
				blend.T = t
				drawPath(path, blend)
			},
			OnEnd: finish,
		}))
	}
}

// cancelTransitions stops an unfinished transition where it is. The next Render
// redraws everything in place.
func (e *Earth) cancelTransitions() {
	for _, t := range e.transitions {
		t.Cancel()
	}
	e.transitions = nil
	e.transitioning = false
}
