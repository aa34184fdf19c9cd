package earth

import (
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"

	"github.com/sudorandom/earth-viz/pkg/sources"
)

// FeatureCollection exports the map's data: every country with its fill, every
// marker as a point and every route as a line through its waypoints.
func (e *Earth) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range e.countries {
		if c.Feature == nil || c.Feature.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(c.Feature.Geometry)
		f.ID = c.TopoID
		f.SetProperty("kind", "country")
		f.SetProperty("iso", c.ISO)
		f.SetProperty("name", c.Name)
		f.SetProperty("fill", e.countryColor(c.ColorIndex))
		fc.AddFeature(f)
	}
	for _, m := range e.markers {
		f := geojson.NewPointFeature([]float64{m.Lon, m.Lat})
		f.SetProperty("kind", "marker")
		if m.HasSize {
			f.SetProperty("size", m.Size)
		}
		if m.Color != "" {
			f.SetProperty("color", m.Color)
		}
		if m.Description != "" {
			f.SetProperty("description", m.Description)
		}
		if m.Country != "" {
			f.SetProperty("country", m.Country)
		}
		fc.AddFeature(f)
	}
	for _, r := range e.routes() {
		line := [][]float64{r.Origin}
		line = append(line, r.Destinations...)
		f := geojson.NewLineStringFeature(line)
		f.SetProperty("kind", "route")
		fc.AddFeature(f)
	}
	return fc
}

// routes returns the distinct routes currently drawn, in drawing order.
func (e *Earth) routes() []sources.Route {
	layer := e.scene.Layer(e.layerID("routes"))
	if layer == nil {
		return nil
	}
	var out []sources.Route
	for _, g := range layer.Children {
		for _, p := range g.Paths {
			if s, ok := p.Data.(*routeSegment); ok && s.index == 0 {
				out = append(out, s.route)
			}
		}
	}
	return out
}

// WriteGeoJSON writes FeatureCollection to w.
func (e *Earth) WriteGeoJSON(w io.Writer) error {
	b, err := e.FeatureCollection().MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	_, err = w.Write(b)
	return err
}
