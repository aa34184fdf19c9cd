package earth

import (
	"fmt"
	"log"
	"math"

	geojson "github.com/paulmach/go.geojson"

	"github.com/sudorandom/earth-viz/pkg/projection"
	"github.com/sudorandom/earth-viz/pkg/scene"
	"github.com/sudorandom/earth-viz/pkg/topology"
)

type datumKind int

const (
	datumSphere datumKind = iota
	datumCountry
	datumMarker
)

// datum is the geography behind a reprojectable path.
type datum struct {
	kind    datumKind
	country *topology.Country
	marker  *Marker
	size    float64
	rel     float64
}

func (e *Earth) layerID(name string) string {
	return fmt.Sprintf("%s-%s", e.id, name)
}

// SetTopology replaces the country data and recomputes the fill colors. The map is
// not redrawn until the next Render.
func (e *Earth) SetTopology(t *topology.Topology) error {
	cs, err := t.Countries()
	if err != nil {
		return err
	}
	neighbors := make([][]int, len(cs))
	for i, c := range cs {
		neighbors[i] = c.Neighbors
	}
	colors := ColorIndexes(neighbors)
	for i, c := range cs {
		c.ColorIndex = colors[i]
	}
	e.topo, e.countries, e.colors = t, cs, colors
	return nil
}

// SetTopoFile loads a TopoJSON file or URL in the background and swaps it in once
// decoded, redrawing the map when it has been rendered. Relative locations resolve
// against the base URL. On failure the previous topology is kept.
func (e *Earth) SetTopoFile(location string) string {
	if location == "" {
		return location
	}
	if e.fetcher == nil {
		log.Printf("[topology] No fetcher configured for %s", location)
		return location
	}
	location = e.resolve(location)
	ctx := e.ctx
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		data, err := e.fetcher.Fetch(ctx, location)
		var topo *topology.Topology
		if err == nil {
			topo, err = topology.Decode(data)
		}
		e.post(func() {
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = e.SetTopology(topo)
			}
			if err != nil {
				log.Printf("[topology] Failed to load %s: %v", location, err)
				return
			}
			log.Printf("[topology] Loaded %d countries from %s", len(e.countries), location)
			if e.rendered {
				e.Render("")
			}
		})
	}()
	return location
}

// ColorIndexes assigns color indexes greedily in declaration order: each node gets
// one more than the highest index among its already assigned neighbors, or 0 when
// none are assigned yet. Adjacent nodes never share an index.
func ColorIndexes(neighbors [][]int) []int {
	idx := make([]int, len(neighbors))
	assigned := make([]bool, len(neighbors))
	for i, ns := range neighbors {
		highest := -1
		for _, n := range ns {
			if n >= 0 && n < len(idx) && assigned[n] && idx[n] > highest {
				highest = idx[n]
			}
		}
		idx[i] = highest + 1
		assigned[i] = true
	}
	return idx
}

// Render draws the map in the given style, or the current style when empty. It does
// nothing when there is no surface id, the width is not positive or the style does
// not resolve. Oceans, countries and markers are rebuilt from scratch every time.
func (e *Earth) Render(style string) {
	if style != "" {
		d, ok := e.registry.Resolve(style)
		if !ok {
			return
		}
		e.style = d
	}
	if e.id == "" || e.width <= 0 || e.style == nil {
		return
	}

	e.endRotation()
	e.cancelTransitions()

	p := e.style.New()
	p.SetScale(e.scaleFor(e.style))
	p.SetTranslate(e.center())
	p.SetRotate(e.location)
	e.proj = p

	if e.scene == nil || e.scene.Width != e.width {
		e.scene = scene.New(e.id, e.width, e.width)
	}
	e.scene.Remove(e.layerID("oceans"))
	e.scene.Remove(e.layerID("countries"))
	e.deleteMarkers()

	oceans := e.scene.Append(&scene.Layer{ID: e.layerID("oceans")})
	sphere := scene.NewPath(scene.KindPolygon, "ocean")
	sphere.ID = e.layerID("oceans-path")
	sphere.Fill = e.palette.Ocean
	sphere.Stroke = "#333333"
	sphere.StrokeWidth = 1.5
	sphere.Data = &datum{kind: datumSphere}
	oceans.Add(sphere)

	land := e.scene.Append(&scene.Layer{ID: e.layerID("countries")})
	for _, c := range e.countries {
		path := scene.NewPath(scene.KindPolygon, "country "+c.ISO)
		path.Fill = e.countryColor(c.ColorIndex)
		path.Stroke = e.palette.Border
		path.StrokeWidth = 0.5
		path.Data = &datum{kind: datumCountry, country: c}
		land.Add(path)
	}
	e.reproject(p)

	// routes stay frozen but are kept above the map
	if r := e.scene.Layer(e.layerID("routes")); r != nil {
		e.scene.Remove(r.ID)
		e.scene.Append(r)
	}

	e.rendered = true
	e.requestMarkerData()
	e.startSpin()
	e.Start()
	e.fire(EventRendered)
}

func (e *Earth) reprojectable() []*scene.Path {
	var out []*scene.Path
	for _, name := range []string{"oceans", "countries", "markers"} {
		if l := e.scene.Layer(e.layerID(name)); l != nil {
			l.Walk(func(p *scene.Path) { out = append(out, p) })
		}
	}
	return out
}

// reproject redraws every path that follows the projection. Routes keep the
// geometry they were created with.
func (e *Earth) reproject(p projection.Projector) {
	for _, path := range e.reprojectable() {
		drawPath(path, p)
	}
}

func drawPath(path *scene.Path, p projection.Projector) {
	d, ok := path.Data.(*datum)
	if !ok {
		return
	}
	switch d.kind {
	case datumSphere:
		if o, ok := p.(projection.Outliner); ok {
			path.Rings = [][]scene.Point{toPoints(o.Outline())}
		}
	case datumCountry:
		if d.country.Feature != nil {
			path.Rings = projectGeometry(p, d.country.Feature.Geometry)
		}
	case datumMarker:
		x, y, visible := p.Project(d.marker.Lon, d.marker.Lat)
		path.Center = scene.Point{X: x, Y: y}
		path.Hidden = !visible
	}
}

func toPoints(ring [][2]float64) []scene.Point {
	out := make([]scene.Point, len(ring))
	for i, pt := range ring {
		out[i] = scene.Point{X: pt[0], Y: pt[1]}
	}
	return out
}

func seamOf(p projection.Projector) float64 {
	switch v := p.(type) {
	case *projection.Projection:
		return v.SeamWidth()
	case *projection.Interpolated:
		return math.Max(seamOf(v.From), seamOf(v.To))
	}
	return 0
}

// projectGeometry converts a geometry to pixel rings. Polygons entirely on the far
// side of a clipped globe disappear; rings and lines are cut where they jump across
// the antimeridian of a flat projection.
func projectGeometry(p projection.Projector, g *geojson.Geometry) [][]scene.Point {
	if g == nil {
		return nil
	}
	seam := seamOf(p)
	var out [][]scene.Point
	switch g.Type {
	case geojson.GeometryPolygon:
		out = append(out, projectPolygon(p, g.Polygon, seam)...)
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			out = append(out, projectPolygon(p, poly, seam)...)
		}
	case geojson.GeometryLineString:
		out = append(out, projectLine(p, g.LineString, seam)...)
	case geojson.GeometryMultiLineString:
		for _, l := range g.MultiLineString {
			out = append(out, projectLine(p, l, seam)...)
		}
	case geojson.GeometryCollection:
		for _, sub := range g.Geometries {
			out = append(out, projectGeometry(p, sub)...)
		}
	}
	return out
}

func projectPolygon(p projection.Projector, rings [][][]float64, seam float64) [][]scene.Point {
	var out [][]scene.Point
	for _, ring := range rings {
		var cur []scene.Point
		visible := false
		var pieces [][]scene.Point
		for _, c := range ring {
			if len(c) < 2 {
				continue
			}
			x, y, v := p.Project(c[0], c[1])
			visible = visible || v
			pt := scene.Point{X: x, Y: y}
			if seam > 0 && len(cur) > 0 && math.Abs(pt.X-cur[len(cur)-1].X) > seam {
				pieces = append(pieces, cur)
				cur = nil
			}
			cur = append(cur, pt)
		}
		if len(cur) > 0 {
			pieces = append(pieces, cur)
		}
		if visible {
			out = append(out, pieces...)
		}
	}
	return out
}

func projectLine(p projection.Projector, line [][]float64, seam float64) [][]scene.Point {
	var out [][]scene.Point
	var cur []scene.Point
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, c := range line {
		if len(c) < 2 {
			continue
		}
		x, y, v := p.Project(c[0], c[1])
		if !v {
			flush()
			continue
		}
		pt := scene.Point{X: x, Y: y}
		if seam > 0 && len(cur) > 0 && math.Abs(pt.X-cur[len(cur)-1].X) > seam {
			flush()
		}
		cur = append(cur, pt)
	}
	flush()
	return out
}
