package projection

import (
	"math"
	"testing"

	"github.com/sudorandom/earth-viz/pkg/geo"
)

func TestProjectCenter(t *testing.T) {
	for _, e := range Catalog() {
		p := e.Build().SetScale(100).SetTranslate(480, 480)
		if e.Key == "albers" {
			continue // conic origin is offset from the center
		}
		x, y, visible := p.Project(0, 0)
		if !visible || math.Abs(x-480) > 1e-6 || math.Abs(y-480) > 1e-6 {
			t.Errorf("%s: Project(0, 0) = (%f, %f, %v); want (480, 480, true)", e.Key, x, y, visible)
		}
	}
}

func TestOrthographicClipping(t *testing.T) {
	p := globe().SetScale(100).SetTranslate(0, 0)

	tests := []struct {
		lon, lat     float64
		wantX, wantY float64
		visible      bool
	}{
		{0, 0, 0, 0, true},
		{90 - 1e-9, 0, 100, 0, true},
		{0, 45, 0, -70.71, true},
		{180, 10, 0, -100, false},
		{135, 0, 100, 0, false}, // clamped onto the horizon
	}

	for _, tt := range tests {
		x, y, visible := p.Project(tt.lon, tt.lat)
		if visible != tt.visible || math.Abs(x-tt.wantX) > 0.1 || math.Abs(y-tt.wantY) > 0.1 {
			t.Errorf("Project(%f, %f) = (%f, %f, %v); want (%f, %f, %v)", tt.lon, tt.lat, x, y, visible, tt.wantX, tt.wantY, tt.visible)
		}
	}
}

func TestRotateAndInvert(t *testing.T) {
	p := globe().SetScale(200).SetTranslate(250, 250).SetRotate(geo.Location{-30, -20, 10})

	for _, pt := range []geo.Point{{Lon: 30, Lat: 20}, {Lon: 45, Lat: 10}, {Lon: 0, Lat: 0}, {Lon: 60, Lat: 50}} {
		x, y, visible := p.Project(pt.Lon, pt.Lat)
		if !visible {
			t.Fatalf("Project(%v) not visible", pt)
		}
		lon, lat, ok := p.Invert(x, y)
		if !ok || math.Abs(lon-pt.Lon) > 1e-6 || math.Abs(lat-pt.Lat) > 1e-6 {
			t.Errorf("Invert(Project(%v)) = (%f, %f, %v)", pt, lon, lat, ok)
		}
	}

	// The rotation brings (30, 20) to the center of the globe.
	x, y, _ := p.Project(30, 20)
	if math.Abs(x-250) > 1e-6 || math.Abs(y-250) > 1e-6 {
		t.Errorf("Project(30, 20) = (%f, %f); want the center", x, y)
	}
}

func TestInvertUnsupported(t *testing.T) {
	p := New(aitoff{})
	if _, _, ok := p.Invert(0, 0); ok {
		t.Error("expected aitoff to have no inverse")
	}
}

func TestOutline(t *testing.T) {
	g := globe().SetScale(100).SetTranslate(100, 100)
	for _, pt := range g.Outline() {
		if d := math.Hypot(pt[0]-100, pt[1]-100); math.Abs(d-100) > 1e-6 {
			t.Fatalf("globe outline point %v at distance %f; want 100", pt, d)
		}
	}

	e := New(equirectangular{}).SetScale(100)
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, pt := range e.Outline() {
		minX, maxX = math.Min(minX, pt[0]), math.Max(maxX, pt[0])
	}
	if math.Abs(maxX-minX-200*math.Pi) > 1e-3 {
		t.Errorf("equirectangular outline width = %f; want %f", maxX-minX, 200*math.Pi)
	}
}

func TestParallels(t *testing.T) {
	reg := DefaultRegistry()
	d, ok := reg.Resolve("Albers")
	if !ok {
		t.Fatal("albers not registered")
	}
	p := d.New()
	par, conic := p.Parallels()
	if !conic || par != [2]float64{20, 50} {
		t.Errorf("Parallels() = %v, %v; want [20 50], true", par, conic)
	}

	e := New(equirectangular{})
	e.SetParallels(10, 20)
	if _, conic := e.Parallels(); conic {
		t.Error("equirectangular should ignore parallels")
	}
}

func TestBlend(t *testing.T) {
	a := New(equirectangular{}).SetScale(100).SetTranslate(0, 0)
	b := New(equirectangular{}).SetScale(100).SetTranslate(100, 50)
	i := Blend(a, b)

	for _, tt := range []struct{ t, wantX, wantY float64 }{{0, 0, 0}, {0.5, 50, 25}, {1, 100, 50}} {
		i.T = tt.t
		x, y, _ := i.Project(0, 0)
		if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
			t.Errorf("T=%f: Project(0, 0) = (%f, %f); want (%f, %f)", tt.t, x, y, tt.wantX, tt.wantY)
		}
	}
}

type pinned struct{}

func (pinned) Project(lon, lat float64) (float64, float64, bool) { return 0, 0, true }

func TestBlendOutline(t *testing.T) {
	a := New(orthographic{}).SetClipAngle(90).SetScale(100).SetTranslate(200, 200)
	b := New(orthographic{}).SetClipAngle(90).SetScale(50).SetTranslate(200, 200)
	i := Blend(a, b)
	i.T = 0.5
	ring := i.Outline()
	if len(ring) != outlineSamples+1 {
		t.Fatalf("expected %d outline points, got %d", outlineSamples+1, len(ring))
	}
	for _, pt := range ring {
		if r := math.Hypot(pt[0]-200, pt[1]-200); math.Abs(r-75) > 0.5 {
			t.Fatalf("blended outline radius %f; want 75", r)
		}
	}

	if Blend(a, pinned{}).Outline() != nil {
		t.Error("expected no outline when one side cannot trace one")
	}
}

func TestMollweideMatchesReference(t *testing.T) {
	// reference values from the Mollweide map of the stream viewer at scale 380
	p := New(mollweide{}).SetScale(380).SetTranslate(960, 540)
	x, y, _ := p.Project(180, 0)
	if math.Abs(x-2034.72) > 1 || math.Abs(y-540) > 1 {
		t.Errorf("Project(180, 0) = (%f, %f); want (2034.72, 540)", x, y)
	}
}
