package viewer

import "math"

// dragThreshold is how far the pointer may move before a press becomes a drag.
const dragThreshold = 3

// gesture separates clicks from drags for a single pointer.
type gesture struct {
	pressed  bool
	dragging bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
}

// press starts a gesture at (x, y).
func (g *gesture) press(x, y float64) {
	*g = gesture{pressed: true, startX: x, startY: y, lastX: x, lastY: y}
}

// move returns the movement since the last call and whether this move turned the
// press into a drag.
func (g *gesture) move(x, y float64) (dx, dy float64, started bool) {
	if !g.pressed {
		return 0, 0, false
	}
	if !g.dragging {
		if math.Hypot(x-g.startX, y-g.startY) < dragThreshold {
			return 0, 0, false
		}
		g.dragging, started = true, true
	}
	dx, dy = x-g.lastX, y-g.lastY
	g.lastX, g.lastY = x, y
	return dx, dy, started
}

// release ends the gesture and reports whether it was a click.
func (g *gesture) release() (click bool) {
	click = g.pressed && !g.dragging
	*g = gesture{}
	return click
}

// zoomAt returns the translation that keeps the map point under (cx, cy) fixed
// when the zoom changes from k0 with translation (tx, ty) to k1.
func zoomAt(cx, cy, k0, tx, ty, k1 float64) (float64, float64) {
	mx, my := (cx-tx)/k0, (cy-ty)/k0
	return cx - mx*k1, cy - my*k1
}
