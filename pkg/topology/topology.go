// Package topology decodes TopoJSON into GeoJSON geometries and derives country
// adjacency from shared arcs.
package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
)

var ErrUnknownObject = errors.New("topology object not found")

type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Object is a TopoJSON geometry object. Arcs holds signed arc indexes whose nesting
// depends on Type; negative index i means arc ^i traversed in reverse.
type Object struct {
	Type        string                 `json:"type"`
	ID          json.RawMessage        `json:"id,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Arcs        json.RawMessage        `json:"arcs,omitempty"`
	Coordinates json.RawMessage        `json:"coordinates,omitempty"`
	Geometries  []*Object              `json:"geometries,omitempty"`
}

// NumericID returns the object id when it is an integer.
func (o *Object) NumericID() (int, bool) {
	if len(o.ID) == 0 {
		return 0, false
	}
	s := string(o.ID)
	if uq, err := strconv.Unquote(s); err == nil {
		s = uq
	}
	id, err := strconv.Atoi(s)
	return id, err == nil
}

// StringID returns the object id as text, or "" when absent.
func (o *Object) StringID() string {
	if len(o.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(o.ID, &s); err == nil {
		return s
	}
	return string(o.ID)
}

type Topology struct {
	Type      string             `json:"type"`
	Transform *Transform         `json:"transform,omitempty"`
	Objects   map[string]*Object `json:"objects"`
	Arcs      [][][]float64      `json:"arcs"`

	positions [][][2]float64
}

// Decode parses a TopoJSON document and resolves its quantized arcs.
func Decode(data []byte) (*Topology, error) {
	var t Topology
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}
	if t.Type != "Topology" {
		return nil, fmt.Errorf("unexpected topology type %q", t.Type)
	}
	t.positions = make([][][2]float64, len(t.Arcs))
	for i, arc := range t.Arcs {
		t.positions[i] = t.decodeArc(arc)
	}
	return &t, nil
}

func (t *Topology) decodeArc(arc [][]float64) [][2]float64 {
	out := make([][2]float64, 0, len(arc))
	var x, y float64
	for _, p := range arc {
		if len(p) < 2 {
			continue
		}
		if t.Transform == nil {
			out = append(out, [2]float64{p[0], p[1]})
			continue
		}
		x += p[0]
		y += p[1]
		out = append(out, [2]float64{
			x*t.Transform.Scale[0] + t.Transform.Translate[0],
			y*t.Transform.Scale[1] + t.Transform.Translate[1],
		})
	}
	return out
}

func (t *Topology) arc(i int) ([][2]float64, bool) {
	reverse := i < 0
	if reverse {
		i = ^i
	}
	if i >= len(t.positions) {
		return nil, false
	}
	a := t.positions[i]
	if !reverse {
		return a, true
	}
	r := make([][2]float64, len(a))
	for j := range a {
		r[j] = a[len(a)-1-j]
	}
	return r, true
}

// line stitches a chain of arcs, dropping the shared point where arcs meet.
func (t *Topology) line(arcs []int) [][]float64 {
	var out [][]float64
	for k, i := range arcs {
		a, ok := t.arc(i)
		if !ok {
			continue
		}
		for j, p := range a {
			if k > 0 && j == 0 && len(out) > 0 {
				continue
			}
			out = append(out, []float64{p[0], p[1]})
		}
	}
	return out
}

func (t *Topology) ring(arcs []int) [][]float64 {
	r := t.line(arcs)
	for len(r) > 0 && len(r) < 4 {
		r = append(r, r[0])
	}
	return r
}

func (t *Topology) polygon(rings [][]int) [][][]float64 {
	out := make([][][]float64, 0, len(rings))
	for _, r := range rings {
		if ring := t.ring(r); len(ring) > 0 {
			out = append(out, ring)
		}
	}
	return out
}

// Geometry converts an object to a GeoJSON geometry.
func (t *Topology) Geometry(o *Object) (*geojson.Geometry, error) {
	switch o.Type {
	case "Polygon":
		var arcs [][]int
		if err := json.Unmarshal(o.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("polygon arcs: %w", err)
		}
		return geojson.NewPolygonGeometry(t.polygon(arcs)), nil
	case "MultiPolygon":
		var arcs [][][]int
		if err := json.Unmarshal(o.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("multipolygon arcs: %w", err)
		}
		polys := make([][][][]float64, 0, len(arcs))
		for _, p := range arcs {
			polys = append(polys, t.polygon(p))
		}
		return geojson.NewMultiPolygonGeometry(polys...), nil
	case "LineString":
		var arcs []int
		if err := json.Unmarshal(o.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("linestring arcs: %w", err)
		}
		return geojson.NewLineStringGeometry(t.line(arcs)), nil
	case "MultiLineString":
		var arcs [][]int
		if err := json.Unmarshal(o.Arcs, &arcs); err != nil {
			return nil, fmt.Errorf("multilinestring arcs: %w", err)
		}
		lines := make([][][]float64, 0, len(arcs))
		for _, l := range arcs {
			lines = append(lines, t.line(l))
		}
		return geojson.NewMultiLineStringGeometry(lines...), nil
	case "Point":
		var c []float64
		if err := json.Unmarshal(o.Coordinates, &c); err != nil {
			return nil, fmt.Errorf("point coordinates: %w", err)
		}
		return geojson.NewPointGeometry(t.point(c)), nil
	case "GeometryCollection":
		geoms := make([]*geojson.Geometry, 0, len(o.Geometries))
		for _, g := range o.Geometries {
			gg, err := t.Geometry(g)
			if err != nil {
				return nil, err
			}
			geoms = append(geoms, gg)
		}
		return geojson.NewCollectionGeometry(geoms...), nil
	}
	return nil, fmt.Errorf("unsupported geometry type %q", o.Type)
}

func (t *Topology) point(c []float64) []float64 {
	if len(c) < 2 {
		return c
	}
	if t.Transform == nil {
		return []float64{c[0], c[1]}
	}
	return []float64{
		c[0]*t.Transform.Scale[0] + t.Transform.Translate[0],
		c[1]*t.Transform.Scale[1] + t.Transform.Translate[1],
	}
}

// Features converts the members of a named geometry collection into features, in
// declaration order. Members that cannot be converted are skipped.
func (t *Topology) Features(name string) ([]*geojson.Feature, error) {
	obj, ok := t.Objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObject, name)
	}
	members := obj.Geometries
	if obj.Type != "GeometryCollection" {
		members = []*Object{obj}
	}
	features := make([]*geojson.Feature, 0, len(members))
	for _, m := range members {
		g, err := t.Geometry(m)
		if err != nil {
			continue
		}
		f := geojson.NewFeature(g)
		if id, ok := m.NumericID(); ok {
			f.ID = id
		} else if s := m.StringID(); s != "" {
			f.ID = s
		}
		for k, v := range m.Properties {
			f.SetProperty(k, v)
		}
		features = append(features, f)
	}
	return features, nil
}
