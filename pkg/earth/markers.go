package earth

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sudorandom/earth-viz/pkg/anim"
	"github.com/sudorandom/earth-viz/pkg/scene"
	"github.com/sudorandom/earth-viz/pkg/sources"
)

// Marker is a normalized marker record.
type Marker struct {
	Lat, Lon    float64
	Size        float64
	HasSize     bool
	Color       string
	Description string
	Country     string
	IP          string

	// Record is the raw row the marker was built from.
	Record sources.Record
}

// Key aliases in order of precedence. Exact spellings win over case-insensitive
// matches.
var (
	latKeys         = []string{"latitude", "Latitude", "lat", "Lat"}
	lonKeys         = []string{"longitude", "Longitude", "lon", "Lon", "lng", "Lng"}
	sizeKeys        = []string{"size", "Size"}
	colorKeys       = []string{"color", "Color"}
	descriptionKeys = []string{"description", "Description"}
	countryKeys     = []string{"country", "Country"}
	ipKeys          = []string{"ip", "IP"}
)

func field(rec sources.Record, aliases ...string) (string, bool) {
	for _, a := range aliases {
		if v := strings.TrimSpace(rec[a]); v != "" {
			return v, true
		}
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, a := range aliases {
		for _, k := range keys {
			if strings.EqualFold(k, a) {
				if v := strings.TrimSpace(rec[k]); v != "" {
					return v, true
				}
			}
		}
	}
	return "", false
}

func number(rec sources.Record, aliases ...string) (float64, bool) {
	s, ok := field(rec, aliases...)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NormalizeMarker maps a raw record onto a Marker. ok is false when the record has no
// usable latitude and longitude.
func NormalizeMarker(rec sources.Record) (m Marker, ok bool) {
	m.Record = rec
	m.Size, m.HasSize = number(rec, sizeKeys...)
	if m.HasSize && m.Size <= 0 {
		m.Size, m.HasSize = 0, false
	}
	m.Color, _ = field(rec, colorKeys...)
	m.Description, _ = field(rec, descriptionKeys...)
	m.Country, _ = field(rec, countryKeys...)
	m.IP, _ = field(rec, ipKeys...)

	lat, okLat := number(rec, latKeys...)
	lon, okLon := number(rec, lonKeys...)
	if !okLat || !okLon {
		return m, false
	}
	m.Lat, m.Lon = lat, lon
	return m, true
}

func (e *Earth) normalizeMarkers(recs []sources.Record) []Marker {
	out := make([]Marker, 0, len(recs))
	for _, rec := range recs {
		m, ok := NormalizeMarker(rec)
		if !ok && m.IP != "" && e.locator != nil {
			var country string
			m.Lat, m.Lon, country, ok = e.locator.Locate(m.IP)
			if m.Country == "" {
				m.Country = country
			}
		}
		if ok {
			out = append(out, m)
		}
	}
	return out
}

// Markers returns the current marker set.
func (e *Earth) Markers() []Marker {
	return append([]Marker(nil), e.markers...)
}

// MarkerDraws counts how many times the marker layer has been built.
func (e *Earth) MarkerDraws() int { return e.markerDraws }

type Animation string

const (
	AnimationPulse Animation = "pulse"
	AnimationPing  Animation = "ping"
	AnimationNone  Animation = "none"
)

// MarkerPhases returns the stroke animation phases of one cycle for a marker whose
// size relative to the largest marker is rel. Ping grows and then drops to zero at
// once; pulse grows, holds and collapses in three equal phases. Larger markers
// animate more slowly.
func MarkerPhases(a Animation, d time.Duration, rel float64) []time.Duration {
	ms := float64(d / time.Millisecond)
	phase := func(max float64) time.Duration {
		v := math.Min(math.Floor(rel*max), max)
		if v < 0 || math.IsNaN(v) {
			v = 0
		}
		return time.Duration(v) * time.Millisecond
	}
	switch a {
	case AnimationPing:
		return []time.Duration{phase(math.Floor(ms * 0.9)), 0}
	case AnimationPulse:
		p := phase(math.Floor(ms * 0.9 / 3))
		return []time.Duration{p, p, p}
	}
	return nil
}

func (e *Earth) deleteMarkers() {
	if e.scene != nil {
		e.scene.Remove(e.layerID("markers"))
	}
	e.markerLoop.Cancel()
	e.markerLoop = nil
	for p, t := range e.markerTweens {
		t.Cancel()
		delete(e.markerTweens, p)
	}
	if !e.tableProvided {
		e.table = nil
	}
}

// drawMarkers rebuilds the marker layer on top of the map and starts its animation.
func (e *Earth) drawMarkers() {
	if !e.rendered || e.transitioning || e.proj == nil {
		return
	}
	e.deleteMarkers()
	e.markerDraws++

	scale := 1.0
	if e.markerRelative {
		scale = float64(e.width) / 100
	}
	largest := 0.0
	for _, m := range e.markers {
		if m.HasSize && m.Size > largest {
			largest = m.Size
		}
	}
	if largest == 0 {
		largest = float64(e.markerSize)
	}
	lg := largest * scale
	if lg == 0 {
		lg = 1
	}

	layer := e.scene.Append(&scene.Layer{ID: e.layerID("markers")})
	for i := range e.markers {
		m := &e.markers[i]
		size := float64(e.markerSize)
		if m.HasSize {
			size = m.Size
		}
		size *= scale

		c := e.palette.Marker
		if ValidColor(m.Color) {
			c = m.Color
		}
		path := scene.NewPath(scene.KindCircle, strings.TrimSpace("marker "+m.Country))
		path.Radius = 1
		path.Fill = c
		path.Stroke = c
		path.StrokeOpacity = e.palette.MarkerOpacity
		path.Data = &datum{kind: datumMarker, marker: m, size: size, rel: size / lg}
		drawPath(path, e.proj)
		layer.Add(path)
	}

	switch e.markerAnim {
	case AnimationPing, AnimationPulse:
		e.markerLoop = e.sched.Every(e.markerDuration, func(time.Time) { e.animateMarkers() })
	default:
		for _, p := range layer.Paths {
			p.StrokeWidth = p.Data.(*datum).size
		}
	}

	if !e.tableProvided && len(e.columns) > 0 && e.table == nil {
		e.table = e.buildTable()
	}
}

func (e *Earth) strokeTarget(d *datum) float64 {
	sz := d.size
	if sz < 1 {
		sz *= float64(e.markerSize)
	}
	return sz
}

func (e *Earth) animateMarkers() {
	layer := e.scene.Layer(e.layerID("markers"))
	if layer == nil {
		return
	}
	for _, path := range layer.Paths {
		d, ok := path.Data.(*datum)
		if !ok {
			continue
		}
		if t := e.markerTweens[path]; t != nil {
			t.Cancel()
		}
		e.markerTweens[path] = e.sched.Tween(e.markerSteps(path, d)...)
	}
}

func (e *Earth) markerSteps(path *scene.Path, d *datum) []anim.Tween {
	phases := MarkerPhases(e.markerAnim, e.markerDuration, d.rel)
	target := e.strokeTarget(d)

	var from float64
	grow := anim.Tween{
		Duration: phases[0],
		OnStart:  func() { from = path.StrokeWidth },
		Update:   func(t float64) { path.StrokeWidth = from + (target-from)*t },
		OnEnd:    func() { path.StrokeWidth = target },
	}
	if e.markerAnim == AnimationPing {
		return []anim.Tween{grow, {OnEnd: func() { path.StrokeWidth = 0 }}}
	}
	return []anim.Tween{
		grow,
		{Duration: phases[1]},
		{
			Duration: phases[2],
			Update:   func(t float64) { path.StrokeWidth = target * (1 - t) },
			OnEnd:    func() { path.StrokeWidth = 0 },
		},
	}
}
