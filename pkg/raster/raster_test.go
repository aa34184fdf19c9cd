package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/sudorandom/earth-viz/pkg/scene"
)

func square(x0, y0, x1, y1 float64) *scene.Path {
	p := scene.NewPath(scene.KindPolygon, "square")
	p.Rings = [][]scene.Point{{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}}
	p.Fill = "#ff0000"
	return p
}

func render(s *scene.Scene) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	Clear(img, color.RGBA{0, 0, 0, 255})
	Rasterize(img, s)
	return img
}

func TestRasterizePolygon(t *testing.T) {
	s := scene.New("t", 32, 32)
	s.Append(&scene.Layer{ID: "l"}).Add(square(10, 10, 20, 20))
	img := render(s)

	if got := img.RGBAAt(15, 15); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inside pixel = %v; want red", got)
	}
	if got := img.RGBAAt(5, 5); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("outside pixel = %v; want black", got)
	}
	if got := img.RGBAAt(20, 15); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("pixel past the right edge = %v; want black", got)
	}
}

func TestRasterizeHoles(t *testing.T) {
	s := scene.New("t", 32, 32)
	p := square(4, 4, 28, 28)
	p.Rings = append(p.Rings, []scene.Point{{X: 12, Y: 12}, {X: 20, Y: 12}, {X: 20, Y: 20}, {X: 12, Y: 20}})
	s.Append(&scene.Layer{ID: "l"}).Add(p)
	img := render(s)

	if got := img.RGBAAt(16, 16); got.R != 0 {
		t.Errorf("hole pixel = %v; want unfilled", got)
	}
	if got := img.RGBAAt(6, 16); got.R != 255 {
		t.Errorf("ring pixel = %v; want filled", got)
	}
}

func TestRasterizeOpacity(t *testing.T) {
	s := scene.New("t", 8, 8)
	p := square(0, 0, 8, 8)
	p.Fill = "#ffffff"
	p.FillOpacity = 0.5
	s.Append(&scene.Layer{ID: "l"}).Add(p)
	img := render(s)

	if got := img.RGBAAt(4, 4); got.R < 126 || got.R > 128 || got.A != 255 {
		t.Errorf("half white over black = %v; want about 127", got)
	}
}

func TestRasterizeCircleAndHidden(t *testing.T) {
	s := scene.New("t", 32, 32)
	l := s.Append(&scene.Layer{ID: "l"})

	c := scene.NewPath(scene.KindCircle, "marker")
	c.Center = scene.Point{X: 8, Y: 8}
	c.Radius = 1
	c.Stroke = "#00ff00"
	c.StrokeWidth = 6
	l.Add(c)

	h := scene.NewPath(scene.KindCircle, "marker")
	h.Center = scene.Point{X: 24, Y: 24}
	h.Radius = 4
	h.Fill = "#00ff00"
	h.Hidden = true
	l.Add(h)

	img := render(s)
	if got := img.RGBAAt(10, 8); got.G != 255 {
		t.Errorf("stroked ring pixel = %v; want green", got)
	}
	if got := img.RGBAAt(24, 24); got.G != 0 {
		t.Errorf("hidden path was drawn: %v", got)
	}
}

func TestRasterizeDash(t *testing.T) {
	tests := []struct {
		offset   float64
		at5, at25 bool
	}{
		{0, true, true},
		{30, false, false},
		{15, true, false},
	}
	for _, tt := range tests {
		s := scene.New("t", 32, 10)
		p := scene.NewPath(scene.KindLine, "travel-route")
		p.Rings = [][]scene.Point{{{X: 0, Y: 5}, {X: 30, Y: 5}}}
		p.Stroke = "#ffffff"
		p.StrokeWidth = 1
		p.DashArray = []float64{30, 30}
		p.DashOffset = tt.offset
		s.Append(&scene.Layer{ID: "l"}).Add(p)
		img := render(s)

		if got := img.RGBAAt(5, 5).R == 255; got != tt.at5 {
			t.Errorf("offset %f: pixel 5 drawn = %v; want %v", tt.offset, got, tt.at5)
		}
		if got := img.RGBAAt(25, 5).R == 255; got != tt.at25 {
			t.Errorf("offset %f: pixel 25 drawn = %v; want %v", tt.offset, got, tt.at25)
		}
	}
}

func TestRasterizeZoom(t *testing.T) {
	s := scene.New("t", 32, 32)
	s.Transform = &scene.Affine{Scale: 2}
	s.Append(&scene.Layer{ID: "l"}).Add(square(2, 2, 4, 4))
	img := render(s)

	if got := img.RGBAAt(6, 6); got.R != 255 {
		t.Errorf("zoomed pixel = %v; want red", got)
	}
	if got := img.RGBAAt(3, 3); got.R != 0 {
		t.Errorf("pixel outside the zoomed square = %v; want black", got)
	}
}
