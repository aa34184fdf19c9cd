package earth

import (
	"math"

	"github.com/sudorandom/earth-viz/pkg/geo"
	"github.com/sudorandom/earth-viz/pkg/scene"
	"github.com/sudorandom/earth-viz/pkg/topology"
)

const (
	minZoom = 1
	maxZoom = 10

	// markerSlop is the smallest hit radius of a marker, in pixels.
	markerSlop = 3
)

// AddOnCountryClick registers fn to run when a country is clicked.
func (e *Earth) AddOnCountryClick(fn func(*topology.Country)) {
	if fn != nil {
		e.countryHandlers = append(e.countryHandlers, fn)
	}
}

// AddOnMarkerClick registers fn to run when a marker is clicked.
func (e *Earth) AddOnMarkerClick(fn func(Marker)) {
	if fn != nil {
		e.markerHandlers = append(e.markerHandlers, fn)
	}
}

// Click handles a click at a surface pixel. Markers sit above countries and are
// tested first. Clicks that end a drag are ignored. When a description table exists
// and the descriptor is on, every click also toggles the table, pausing rotation
// while it is shown. It reports whether a marker or country was hit.
func (e *Earth) Click(x, y float64) bool {
	if e.dragging || !e.rendered {
		return false
	}
	if e.descriptor && e.table != nil {
		e.table.Visible = !e.table.Visible
		if e.table.Visible {
			e.Pause()
		} else {
			e.Start()
		}
	}

	pt := e.toMap(scene.Point{X: x, Y: y})
	if m, ok := e.markerAt(pt); ok {
		for _, fn := range e.markerHandlers {
			fn(m)
		}
		return true
	}
	if c := e.countryAt(pt); c != nil {
		for _, fn := range e.countryHandlers {
			fn(c)
		}
		return true
	}
	return false
}

func (e *Earth) markerAt(pt scene.Point) (Marker, bool) {
	layer := e.scene.Layer(e.layerID("markers"))
	if layer == nil {
		return Marker{}, false
	}
	for i := len(layer.Paths) - 1; i >= 0; i-- {
		p := layer.Paths[i]
		d, ok := p.Data.(*datum)
		if !ok || p.Hidden {
			continue
		}
		r := math.Max(p.Radius+p.StrokeWidth/2, markerSlop)
		if math.Hypot(pt.X-p.Center.X, pt.Y-p.Center.Y) <= r {
			return *d.marker, true
		}
	}
	return Marker{}, false
}

func (e *Earth) countryAt(pt scene.Point) *topology.Country {
	layer := e.scene.Layer(e.layerID("countries"))
	if layer == nil {
		return nil
	}
	for i := len(layer.Paths) - 1; i >= 0; i-- {
		p := layer.Paths[i]
		if d, ok := p.Data.(*datum); ok && d.kind == datumCountry && p.Contains(pt) {
			return d.country
		}
	}
	return nil
}

// Zoom scales the whole map by k, clamped to [1, 10], then translates it by
// (tx, ty). A factor of 1 resets the view. It returns the factor in effect.
func (e *Earth) Zoom(k, tx, ty float64) float64 {
	if math.IsNaN(k) {
		k = minZoom
	}
	k = math.Max(minZoom, math.Min(maxZoom, k))
	if k == minZoom {
		e.scene.Transform = nil
	} else {
		e.scene.Transform = &scene.Affine{TX: tx, TY: ty, Scale: k}
	}
	return k
}

// ZoomLevel returns the current zoom factor.
func (e *Earth) ZoomLevel() float64 {
	if e.scene.Transform == nil || e.scene.Transform.Scale == 0 {
		return minZoom
	}
	return e.scene.Transform.Scale
}

// toMap undoes the zoom, mapping a surface pixel to map pixels.
func (e *Earth) toMap(p scene.Point) scene.Point {
	z := e.scene.Transform
	if z == nil {
		return p
	}
	k := z.Scale
	if k == 0 {
		k = 1
	}
	return scene.Point{X: (p.X - z.TX) / k, Y: (p.Y - z.TY) / k}
}

// Locate returns the geographic position under a surface pixel. It fails off the
// map and for projections without an inverse.
func (e *Earth) Locate(x, y float64) (geo.Point, bool) {
	if e.proj == nil {
		return geo.Point{}, false
	}
	m := e.toMap(scene.Point{X: x, Y: y})
	lon, lat, ok := e.proj.Invert(m.X, m.Y)
	if !ok {
		return geo.Point{}, false
	}
	return geo.Point{Lon: lon, Lat: lat}, true
}
