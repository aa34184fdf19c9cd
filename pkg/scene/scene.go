// Package scene holds the drawable state of a map: ordered layers of styled paths in
// pixel space. Hosts rasterize it (the ebiten viewer) or serialize it (SVG export).
package scene

import "math"

type Point struct {
	X, Y float64
}

type Kind int

const (
	KindPolygon Kind = iota
	KindLine
	KindCircle
)

// Affine is applied to a path or layer as translate, then scale, then rotate (degrees).
type Affine struct {
	TX, TY float64
	Scale  float64
	Rotate float64
}

// Apply maps a local point through the transform.
func (a *Affine) Apply(p Point) Point {
	if a == nil {
		return p
	}
	k := a.Scale
	if k == 0 {
		k = 1
	}
	s, c := math.Sincos(a.Rotate * math.Pi / 180)
	x, y := p.X*c-p.Y*s, p.X*s+p.Y*c
	return Point{X: a.TX + k*x, Y: a.TY + k*y}
}

type Path struct {
	ID    string
	Class string
	Kind  Kind

	Rings  [][]Point
	Center Point
	Radius float64
	Hidden bool

	Fill          string
	FillOpacity   float64
	Stroke        string
	StrokeWidth   float64
	StrokeOpacity float64

	// DashArray is nil for solid strokes.
	DashArray  []float64
	DashOffset float64

	Transform *Affine

	// Data is the datum bound to the path: a country, a marker, a route segment.
	Data any
}

// NewPath returns a path with opaque fill and stroke.
func NewPath(kind Kind, class string) *Path {
	return &Path{Kind: kind, Class: class, FillOpacity: 1, StrokeOpacity: 1}
}

// Length is the total length of the path's rings, like SVG getTotalLength.
func (p *Path) Length() float64 {
	if p.Kind == KindCircle {
		return 2 * math.Pi * p.Radius
	}
	var l float64
	for _, r := range p.Rings {
		for i := 1; i < len(r); i++ {
			l += math.Hypot(r[i].X-r[i-1].X, r[i].Y-r[i-1].Y)
		}
	}
	return l
}

// PointAtLength walks the rings for distance l, clamped to the path ends.
func (p *Path) PointAtLength(l float64) Point {
	if p.Kind == KindCircle {
		a := l / math.Max(p.Radius, 1e-9)
		return Point{X: p.Center.X + p.Radius*math.Cos(a), Y: p.Center.Y + p.Radius*math.Sin(a)}
	}
	var last Point
	for _, r := range p.Rings {
		if len(r) == 0 {
			continue
		}
		if l <= 0 {
			return r[0]
		}
		for i := 1; i < len(r); i++ {
			seg := math.Hypot(r[i].X-r[i-1].X, r[i].Y-r[i-1].Y)
			if l <= seg && seg > 0 {
				f := l / seg
				return Point{X: r[i-1].X + f*(r[i].X-r[i-1].X), Y: r[i-1].Y + f*(r[i].Y-r[i-1].Y)}
			}
			l -= seg
		}
		last = r[len(r)-1]
	}
	return last
}

// Bounds returns the axis-aligned box of the path in its own coordinates.
func (p *Path) Bounds() (min, max Point) {
	if p.Kind == KindCircle {
		return Point{p.Center.X - p.Radius, p.Center.Y - p.Radius}, Point{p.Center.X + p.Radius, p.Center.Y + p.Radius}
	}
	min = Point{math.Inf(1), math.Inf(1)}
	max = Point{math.Inf(-1), math.Inf(-1)}
	for _, r := range p.Rings {
		for _, pt := range r {
			min.X, min.Y = math.Min(min.X, pt.X), math.Min(min.Y, pt.Y)
			max.X, max.Y = math.Max(max.X, pt.X), math.Max(max.Y, pt.Y)
		}
	}
	return min, max
}

// Contains reports whether a point lies inside a polygon (even-odd rule) or within
// the stroked radius of a circle.
func (p *Path) Contains(pt Point) bool {
	if p.Hidden {
		return false
	}
	switch p.Kind {
	case KindCircle:
		r := math.Max(p.Radius, p.StrokeWidth/2)
		return math.Hypot(pt.X-p.Center.X, pt.Y-p.Center.Y) <= r
	case KindPolygon:
		inside := false
		for _, r := range p.Rings {
			for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
				if (r[i].Y > pt.Y) != (r[j].Y > pt.Y) &&
					pt.X < (r[j].X-r[i].X)*(pt.Y-r[i].Y)/(r[j].Y-r[i].Y)+r[i].X {
					inside = !inside
				}
			}
		}
		return inside
	}
	return false
}

// Layer is an SVG group: paths drawn in order, then child layers.
type Layer struct {
	ID        string
	Class     string
	Paths     []*Path
	Children  []*Layer
	Transform *Affine
}

func (l *Layer) Add(p *Path) *Path {
	l.Paths = append(l.Paths, p)
	return p
}

// RemovePath detaches p from the layer or any of its children.
func (l *Layer) RemovePath(p *Path) bool {
	for i, q := range l.Paths {
		if q == p {
			l.Paths = append(l.Paths[:i], l.Paths[i+1:]...)
			return true
		}
	}
	for _, c := range l.Children {
		if c.RemovePath(p) {
			return true
		}
	}
	return false
}

func (l *Layer) AddChild(c *Layer) *Layer {
	l.Children = append(l.Children, c)
	return c
}

// Walk visits every path in drawing order.
func (l *Layer) Walk(fn func(*Path)) {
	for _, p := range l.Paths {
		fn(p)
	}
	for _, c := range l.Children {
		c.Walk(fn)
	}
}

// Scene is the square drawing surface of one map instance.
type Scene struct {
	ID     string
	Width  int
	Height int
	Layers []*Layer

	// Transform is the zoom applied to the whole map.
	Transform *Affine
}

func New(id string, width, height int) *Scene {
	return &Scene{ID: id, Width: width, Height: height}
}

// Layer returns the top-level layer with the given id.
func (s *Scene) Layer(id string) *Layer {
	for _, l := range s.Layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Remove deletes the top-level layer with the given id, if present.
func (s *Scene) Remove(id string) {
	for i, l := range s.Layers {
		if l.ID == id {
			s.Layers = append(s.Layers[:i], s.Layers[i+1:]...)
			return
		}
	}
}

// Append adds a layer on top of all existing ones.
func (s *Scene) Append(l *Layer) *Layer {
	s.Layers = append(s.Layers, l)
	return l
}

// Walk visits every path of every layer in drawing order.
func (s *Scene) Walk(fn func(*Path)) {
	for _, l := range s.Layers {
		l.Walk(fn)
	}
}

// Count returns the number of paths in the scene.
func (s *Scene) Count() int {
	n := 0
	s.Walk(func(*Path) { n++ })
	return n
}
