// Package raster paints scenes onto in-memory images on the CPU. It has no window
// or GPU dependency, so headless tools can produce PNG frames.
package raster

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/sudorandom/earth-viz/pkg/earth"
	"github.com/sudorandom/earth-viz/pkg/scene"
)

// Background is the default canvas color behind the map.
var Background = color.RGBA{8, 10, 15, 255}

// Rasterize paints a scene onto img in drawing order. Fills use the even-odd rule,
// strokes are drawn with a square brush and dashes follow the path's dash pattern.
func Rasterize(img *image.RGBA, s *scene.Scene) {
	var xf []*scene.Affine
	if s.Transform != nil {
		xf = append(xf, s.Transform)
	}
	for _, l := range s.Layers {
		rasterLayer(img, l, xf)
	}
}

// Clear fills img with a solid color.
func Clear(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

func rasterLayer(img *image.RGBA, l *scene.Layer, outer []*scene.Affine) {
	xf := outer
	if l.Transform != nil {
		xf = append([]*scene.Affine{l.Transform}, outer...)
	}
	for _, p := range l.Paths {
		rasterPath(img, p, xf)
	}
	for _, c := range l.Children {
		rasterLayer(img, c, xf)
	}
}

// apply maps a path-local point through the path transform and then every
// enclosing transform, innermost first.
func apply(pt scene.Point, own *scene.Affine, xf []*scene.Affine) scene.Point {
	pt = own.Apply(pt)
	for _, a := range xf {
		pt = a.Apply(pt)
	}
	return pt
}

// zoom is the combined scale of a transform chain.
func zoom(own *scene.Affine, xf []*scene.Affine) float64 {
	k := 1.0
	for _, a := range append([]*scene.Affine{own}, xf...) {
		if a != nil && a.Scale != 0 {
			k *= a.Scale
		}
	}
	return k
}

func rasterPath(img *image.RGBA, p *scene.Path, xf []*scene.Affine) {
	if p.Hidden {
		return
	}
	k := zoom(p.Transform, xf)
	fill, hasFill := earth.ParseColor(p.Fill, p.FillOpacity)
	stroke, hasStroke := earth.ParseColor(p.Stroke, p.StrokeOpacity)
	hasStroke = hasStroke && p.StrokeWidth > 0

	switch p.Kind {
	case scene.KindCircle:
		c := apply(p.Center, p.Transform, xf)
		r := p.Radius * k
		if hasFill {
			fillDisc(img, c, 0, r, fill)
		}
		if hasStroke {
			w := p.StrokeWidth * k / 2
			fillDisc(img, c, math.Max(0, r-w), r+w, stroke)
		}
	case scene.KindPolygon, scene.KindLine:
		rings := make([][]scene.Point, len(p.Rings))
		for i, r := range p.Rings {
			rings[i] = make([]scene.Point, len(r))
			for j, pt := range r {
				rings[i][j] = apply(pt, p.Transform, xf)
			}
		}
		if p.Kind == scene.KindPolygon && hasFill {
			fillPolygon(img, rings, fill)
		}
		if hasStroke {
			d := newDasher(p.DashArray, p.DashOffset*k, k)
			w := p.StrokeWidth * k
			for _, r := range rings {
				for i := 0; i+1 < len(r); i++ {
					strokeLine(img, r[i], r[i+1], w, stroke, d)
				}
				if p.Kind == scene.KindPolygon && len(r) > 2 {
					strokeLine(img, r[len(r)-1], r[0], w, stroke, d)
				}
			}
		}
	}
}

func blend(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Rect
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	off := img.PixOffset(x, y)
	if c.A == 255 {
		img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
		return
	}
	inv := uint32(255 - c.A)
	pix := img.Pix[off : off+4 : off+4]
	pix[0] = c.R + uint8(uint32(pix[0])*inv/255)
	pix[1] = c.G + uint8(uint32(pix[1])*inv/255)
	pix[2] = c.B + uint8(uint32(pix[2])*inv/255)
	pix[3] = c.A + uint8(uint32(pix[3])*inv/255)
}

// fillPolygon is a scanline fill sampled at pixel centers.
func fillPolygon(img *image.RGBA, rings [][]scene.Point, c color.RGBA) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range rings {
		for _, p := range r {
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minY, 0) {
		return
	}
	b := img.Rect
	y0 := int(math.Max(math.Floor(minY), float64(b.Min.Y)))
	y1 := int(math.Min(math.Ceil(maxY), float64(b.Max.Y-1)))

	var nodes []float64
	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		nodes = nodes[:0]
		for _, r := range rings {
			for i := range r {
				j := (i + 1) % len(r)
				if (r[i].Y < fy && r[j].Y >= fy) || (r[j].Y < fy && r[i].Y >= fy) {
					nodes = append(nodes, r[i].X+(fy-r[i].Y)/(r[j].Y-r[i].Y)*(r[j].X-r[i].X))
				}
			}
		}
		sort.Float64s(nodes)
		for i := 0; i+1 < len(nodes); i += 2 {
			xs := int(math.Max(math.Ceil(nodes[i]-0.5), float64(b.Min.X)))
			xe := int(math.Min(math.Ceil(nodes[i+1]-0.5), float64(b.Max.X)))
			for x := xs; x < xe; x++ {
				blend(img, x, y, c)
			}
		}
	}
}

// fillDisc fills the ring between radii r0 and r1; r0 of zero is a full disc.
func fillDisc(img *image.RGBA, c scene.Point, r0, r1 float64, col color.RGBA) {
	if r1 <= 0 {
		return
	}
	for y := int(math.Floor(c.Y - r1)); y <= int(math.Ceil(c.Y+r1)); y++ {
		for x := int(math.Floor(c.X - r1)); x <= int(math.Ceil(c.X+r1)); x++ {
			d := math.Hypot(float64(x)+0.5-c.X, float64(y)+0.5-c.Y)
			if d <= r1 && d >= r0 {
				blend(img, x, y, col)
			}
		}
	}
}

// dasher tracks the position along a dashed stroke.
type dasher struct {
	pattern []float64
	period  float64
	pos     float64
}

func newDasher(pattern []float64, offset, k float64) *dasher {
	if len(pattern) == 0 {
		return nil
	}
	d := &dasher{}
	for _, v := range pattern {
		d.pattern = append(d.pattern, v*k)
		d.period += v * k
	}
	if len(pattern)%2 == 1 {
		d.pattern = append(d.pattern, d.pattern...)
		d.period *= 2
	}
	if d.period <= 0 {
		return nil
	}
	d.pos = math.Mod(offset, d.period)
	if d.pos < 0 {
		d.pos += d.period
	}
	return d
}

// on reports whether the stroke is drawn at the current position.
func (d *dasher) on() bool {
	if d == nil {
		return true
	}
	at := math.Mod(d.pos, d.period)
	for i, v := range d.pattern {
		if at < v {
			return i%2 == 0
		}
		at -= v
	}
	return false
}

func (d *dasher) advance(step float64) {
	if d != nil {
		d.pos += step
	}
}

// strokeLine walks the segment one pixel at a time and stamps a square brush.
func strokeLine(img *image.RGBA, a, b scene.Point, w float64, c color.RGBA, d *dasher) {
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	steps := int(math.Ceil(length))
	half := math.Max(w, 1) / 2
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		if d.on() {
			x, y := a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t
			for py := int(math.Floor(y - half + 0.5)); py < int(math.Floor(y+half+0.5)); py++ {
				for px := int(math.Floor(x - half + 0.5)); px < int(math.Floor(x+half+0.5)); px++ {
					blend(img, px, py, c)
				}
			}
		}
		if steps > 0 {
			d.advance(length / float64(steps))
		}
	}
}
