// Package projection implements the cartographic projections used by the map and the
// registry that resolves style names to them.
package projection

import (
	"math"

	"github.com/sudorandom/earth-viz/pkg/geo"
)

// Projector maps a geographic position in degrees to pixel space. Points that fall
// outside the visible area are reported with visible=false and, where the projection
// clips, are clamped onto the clip edge.
type Projector interface {
	Project(lon, lat float64) (x, y float64, visible bool)
}

// Projection is a raw projection with rotation, scale, translation and clipping applied.
type Projection struct {
	raw       Raw
	conic     func(phi0, phi1 float64) Raw
	scale     float64
	tx, ty    float64
	rotate    geo.Location
	rot       rotation
	clipAngle float64
	cosClip   float64
	parallels [2]float64
}

// New wraps a raw projection with the default scale of 150 and no rotation.
func New(raw Raw) *Projection {
	p := &Projection{raw: raw, scale: 150}
	p.SetRotate(geo.Location{})
	return p
}

func newConic(build func(phi0, phi1 float64) Raw, parallels [2]float64) *Projection {
	p := New(build(parallels[0]*geo.Radians, parallels[1]*geo.Radians))
	p.conic = build
	p.parallels = parallels
	return p
}

// Clone returns an independent copy.
func (p *Projection) Clone() *Projection {
	c := *p
	return &c
}

func (p *Projection) Scale() float64 { return p.scale }

func (p *Projection) SetScale(k float64) *Projection {
	p.scale = k
	return p
}

func (p *Projection) Translate() (float64, float64) { return p.tx, p.ty }

func (p *Projection) SetTranslate(x, y float64) *Projection {
	p.tx, p.ty = x, y
	return p
}

func (p *Projection) Rotate() geo.Location { return p.rotate }

func (p *Projection) SetRotate(l geo.Location) *Projection {
	p.rotate = l
	p.rot = newRotation(
		math.Mod(l[0], 360)*geo.Radians,
		math.Mod(l[1], 360)*geo.Radians,
		math.Mod(l[2], 360)*geo.Radians,
	)
	return p
}

// SetClipAngle hides everything further than angle degrees from the projection center.
// Zero disables clipping.
func (p *Projection) SetClipAngle(angle float64) *Projection {
	p.clipAngle = angle
	p.cosClip = math.Cos(angle * geo.Radians)
	return p
}

func (p *Projection) ClipAngle() float64 { return p.clipAngle }

// SetParallels rebuilds a conic projection for new standard parallels. It has no
// effect on other projections.
func (p *Projection) SetParallels(phi0, phi1 float64) *Projection {
	if p.conic != nil {
		p.parallels = [2]float64{phi0, phi1}
		p.raw = p.conic(phi0*geo.Radians, phi1*geo.Radians)
	}
	return p
}

func (p *Projection) Parallels() ([2]float64, bool) { return p.parallels, p.conic != nil }

func (p *Projection) Project(lon, lat float64) (float64, float64, bool) {
	lambda, phi := p.rot.forward(lon*geo.Radians, lat*geo.Radians)
	visible := true
	if p.clipAngle > 0 {
		visible = math.Cos(phi)*math.Cos(lambda) > p.cosClip
	}
	x, y := p.raw.Forward(lambda, phi)
	if !visible && p.clipAngle == 90 {
		// back-hemisphere points land on the horizon
		if r := math.Hypot(x, y); r > 0 {
			x, y = x/r, y/r
		}
	}
	return p.tx + p.scale*x, p.ty - p.scale*y, visible
}

// Invert maps a pixel back to longitude and latitude in degrees.
func (p *Projection) Invert(x, y float64) (lon, lat float64, ok bool) {
	inv, can := p.raw.(Inverter)
	if !can || p.scale == 0 {
		return 0, 0, false
	}
	lambda, phi, ok := inv.Inverse((x-p.tx)/p.scale, (p.ty-y)/p.scale)
	if !ok {
		return 0, 0, false
	}
	lambda, phi = p.rot.inverse(lambda, phi)
	return lambda * geo.Degrees, phi * geo.Degrees, true
}

// SeamWidth is the pixel jump between consecutive points beyond which a path
// crosses the antimeridian. Clipped projections have no seam.
func (p *Projection) SeamWidth() float64 {
	if p.clipAngle > 0 {
		return 0
	}
	return p.scale * math.Pi
}

// Outline returns the boundary of the projected sphere as a closed ring of pixel points.
func (p *Projection) Outline() [][2]float64 {
	const steps = 90
	var ring [][2]float64
	if p.clipAngle > 0 {
		r := p.scale * math.Sin(p.clipAngle*geo.Radians)
		if p.clipAngle >= 90 {
			r = p.scale
		}
		for i := 0; i <= steps*2; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps*2)
			ring = append(ring, [2]float64{p.tx + r*math.Cos(a), p.ty - r*math.Sin(a)})
		}
		return ring
	}

	const eps = 1e-6
	edge := func(lambda, phi float64) {
		x, y := p.raw.Forward(lambda, phi)
		ring = append(ring, [2]float64{p.tx + p.scale*x, p.ty - p.scale*y})
	}
	top, right := math.Pi/2-eps, math.Pi-eps
	for i := 0; i <= steps; i++ {
		edge(-right+2*right*float64(i)/steps, top)
	}
	for i := 1; i <= steps; i++ {
		edge(right, top-2*top*float64(i)/steps)
	}
	for i := 1; i <= steps; i++ {
		edge(right-2*right*float64(i)/steps, -top)
	}
	for i := 1; i <= steps; i++ {
		edge(-right, -top+2*top*float64(i)/steps)
	}
	return ring
}
