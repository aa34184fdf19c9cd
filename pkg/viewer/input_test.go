package viewer

import (
	"math"
	"testing"
)

func TestGestureClick(t *testing.T) {
	var g gesture
	g.press(100, 100)
	if _, _, started := g.move(101, 101); started {
		t.Error("a small wobble should not start a drag")
	}
	if !g.release() {
		t.Error("expected a click")
	}
}

func TestGestureDrag(t *testing.T) {
	var g gesture
	g.press(100, 100)
	dx, dy, started := g.move(110, 100)
	if !started || dx != 10 || dy != 0 {
		t.Errorf("move = (%f, %f, %v); want (10, 0, true)", dx, dy, started)
	}
	dx, dy, started = g.move(110, 95)
	if started || dx != 0 || dy != -5 {
		t.Errorf("move = (%f, %f, %v); want (0, -5, false)", dx, dy, started)
	}
	if g.release() {
		t.Error("a drag should not end in a click")
	}
	if _, _, started := g.move(0, 0); started {
		t.Error("moves without a press should be ignored")
	}
}

func TestZoomAt(t *testing.T) {
	cx, cy := 300.0, 200.0
	k0, tx, ty := 2.0, -100.0, -50.0
	k1 := 3.0
	ntx, nty := zoomAt(cx, cy, k0, tx, ty, k1)

	mx, my := (cx-tx)/k0, (cy-ty)/k0
	if math.Abs(mx*k1+ntx-cx) > 1e-9 || math.Abs(my*k1+nty-cy) > 1e-9 {
		t.Errorf("zoomAt moved the point under the cursor")
	}
}
