package earth

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sudorandom/earth-viz/pkg/sources"
)

func TestNormalizeMarker(t *testing.T) {
	tests := []struct {
		name     string
		rec      sources.Record
		lat, lon float64
		ok       bool
	}{
		{"long names", sources.Record{"latitude": "10", "longitude": "20"}, 10, 20, true},
		{"capitalized", sources.Record{"Lat": "10", "Lon": "20"}, 10, 20, true},
		{"lng", sources.Record{"lat": "-5.5", "lng": "100"}, -5.5, 100, true},
		{"upper case", sources.Record{"LATITUDE": "1", "LONGITUDE": "2"}, 1, 2, true},
		{"exact wins", sources.Record{"lat": "1", "latitude": "5", "lon": "0"}, 5, 0, true},
		{"empty falls through", sources.Record{"latitude": "", "lat": "3", "lon": "4"}, 3, 4, true},
		{"not a number", sources.Record{"lat": "north", "lon": "4"}, 0, 0, false},
		{"missing lon", sources.Record{"lat": "1"}, 0, 0, false},
	}
	for _, tt := range tests {
		m, ok := NormalizeMarker(tt.rec)
		if ok != tt.ok {
			t.Errorf("%s: ok = %v; want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && (m.Lat != tt.lat || m.Lon != tt.lon) {
			t.Errorf("%s: got (%f, %f); want (%f, %f)", tt.name, m.Lat, m.Lon, tt.lat, tt.lon)
		}
	}

	m, _ := NormalizeMarker(sources.Record{"lat": "1", "lon": "1", "Size": "7", "Color": "#ff0000", "Description": "hq", "country": "US"})
	if !m.HasSize || m.Size != 7 || m.Color != "#ff0000" || m.Description != "hq" || m.Country != "US" {
		t.Errorf("optional fields not mapped: %+v", m)
	}
	if m, _ := NormalizeMarker(sources.Record{"lat": "1", "lon": "1", "size": "-2"}); m.HasSize {
		t.Error("a negative size should be ignored")
	}
}

func markerPath(t *testing.T, e *Earth, i int) (x, y, width float64) {
	t.Helper()
	l := e.Scene().Layer("map-markers")
	if l == nil || len(l.Paths) <= i {
		t.Fatalf("marker %d not drawn", i)
	}
	p := l.Paths[i]
	return p.Center.X, p.Center.Y, p.StrokeWidth
}

func TestMarkerAliasesDrawAlike(t *testing.T) {
	e, _ := newTestEarth(t, Options{})
	e.Render("")

	e.SetMarkerData([]sources.Record{{"Lat": "40", "Lon": "-74"}})
	x1, y1, _ := markerPath(t, e, 0)
	e.SetMarkerData([]sources.Record{{"latitude": "40", "longitude": "-74"}})
	x2, y2, _ := markerPath(t, e, 0)
	if x1 != x2 || y1 != y2 {
		t.Errorf("centers differ: (%f, %f) vs (%f, %f)", x1, y1, x2, y2)
	}
}

func TestMarkerPhases(t *testing.T) {
	tests := []struct {
		anim Animation
		d    time.Duration
		rel  float64
		want []time.Duration
	}{
		{AnimationPing, 1500 * time.Millisecond, 0.5, []time.Duration{675 * time.Millisecond, 0}},
		{AnimationPing, 1500 * time.Millisecond, 2, []time.Duration{1350 * time.Millisecond, 0}},
		{AnimationPulse, 1500 * time.Millisecond, 1, []time.Duration{450 * time.Millisecond, 450 * time.Millisecond, 450 * time.Millisecond}},
		{AnimationPulse, 1000 * time.Millisecond, 0.5, []time.Duration{150 * time.Millisecond, 150 * time.Millisecond, 150 * time.Millisecond}},
		{AnimationNone, time.Second, 1, nil},
	}
	for _, tt := range tests {
		got := MarkerPhases(tt.anim, tt.d, tt.rel)
		if len(got) != len(tt.want) {
			t.Errorf("MarkerPhases(%s, %v, %f) = %v; want %v", tt.anim, tt.d, tt.rel, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("MarkerPhases(%s, %v, %f) = %v; want %v", tt.anim, tt.d, tt.rel, got, tt.want)
				break
			}
		}
	}
}

func TestMarkerStaticSize(t *testing.T) {
	e, _ := newTestEarth(t, Options{})
	e.SetMarkerAnimation("none")
	e.SetMarkerSize("2%")
	e.SetMarkerData([]sources.Record{{"lat": "0", "lon": "0"}, {"lat": "0", "lon": "10", "size": "4"}})
	e.Render("")

	if _, _, w := markerPath(t, e, 0); math.Abs(w-19.2) > 1e-9 {
		t.Errorf("relative marker width = %f; want 19.2", w)
	}
	if _, _, w := markerPath(t, e, 1); math.Abs(w-38.4) > 1e-9 {
		t.Errorf("sized relative marker width = %f; want 38.4", w)
	}
	l := e.Scene().Layer("map-markers")
	if l.Paths[0].Class != "marker" {
		t.Errorf("marker class = %q; want marker", l.Paths[0].Class)
	}
	if l.Paths[0].StrokeOpacity != 0.7 {
		t.Errorf("marker stroke opacity = %f; want 0.7", l.Paths[0].StrokeOpacity)
	}
}

func TestMarkerPing(t *testing.T) {
	e, clock := newTestEarth(t, Options{})
	e.SetMarkerAnimation("ping")
	e.SetMarkerAnimationDuration(time.Second)
	e.SetMarkerData([]sources.Record{{"lat": "0", "lon": "0"}})
	e.Render("")

	step(e, clock, time.Second) // first cycle starts
	step(e, clock, 450*time.Millisecond)
	if _, _, w := markerPath(t, e, 0); math.Abs(w-1.5) > 1e-9 {
		t.Errorf("halfway through ping width = %f; want 1.5", w)
	}
	step(e, clock, 450*time.Millisecond)
	if _, _, w := markerPath(t, e, 0); w != 0 {
		t.Errorf("after ping width = %f; want 0", w)
	}
}

func TestMarkerPulse(t *testing.T) {
	e, clock := newTestEarth(t, Options{})
	e.SetMarkerData([]sources.Record{{"lat": "0", "lon": "0", "size": "6", "country": "GH"}})
	e.Render("")

	if l := e.Scene().Layer("map-markers"); l.Paths[0].Class != "marker GH" {
		t.Errorf("marker class = %q; want %q", l.Paths[0].Class, "marker GH")
	}
	step(e, clock, 1500*time.Millisecond)
	step(e, clock, 450*time.Millisecond)
	if _, _, w := markerPath(t, e, 0); w != 6 {
		t.Errorf("after grow width = %f; want 6", w)
	}
	step(e, clock, 450*time.Millisecond)
	if _, _, w := markerPath(t, e, 0); w != 6 {
		t.Errorf("after hold width = %f; want 6", w)
	}
	step(e, clock, 450*time.Millisecond)
	if _, _, w := markerPath(t, e, 0); w != 0 {
		t.Errorf("after collapse width = %f; want 0", w)
	}
}

func TestDeleteMarkersCancelsLoop(t *testing.T) {
	e, _ := newTestEarth(t, Options{})
	e.SetMarkerData([]sources.Record{{"lat": "0", "lon": "0"}})
	e.Render("")
	loop := e.markerLoop
	if !loop.Active() {
		t.Fatal("expected a running marker animation")
	}
	e.deleteMarkers()
	if loop.Active() {
		t.Error("deleting markers should cancel their animation")
	}
}

type fakeLocator map[string][3]string

func (f fakeLocator) Locate(ip string) (float64, float64, string, bool) {
	v, ok := f[ip]
	if !ok {
		return 0, 0, "", false
	}
	var lat, lon float64
	fmt.Sscan(v[0], &lat)
	fmt.Sscan(v[1], &lon)
	return lat, lon, v[2], true
}

func TestMarkersFromIP(t *testing.T) {
	e, _ := newTestEarth(t, Options{Locator: fakeLocator{"192.0.2.1": {"48.85", "2.35", "FR"}}})
	e.SetMarkerData([]sources.Record{{"ip": "192.0.2.1"}, {"ip": "198.51.100.1"}})
	ms := e.Markers()
	if len(ms) != 1 {
		t.Fatalf("got %d markers; want 1", len(ms))
	}
	if ms[0].Lat != 48.85 || ms[0].Lon != 2.35 || ms[0].Country != "FR" {
		t.Errorf("marker = %+v", ms[0])
	}
}

// gatedFetcher holds the first request until released so that a later request can
// overtake it.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (f *gatedFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	n := f.calls
	f.calls++
	f.mu.Unlock()
	if n == 0 {
		close(f.entered)
		<-f.release
		return []byte("lat,lon\n1,1\n"), nil
	}
	return []byte("lat,lon\n2,2\n"), nil
}

func TestStaleResponseDiscarded(t *testing.T) {
	f := &gatedFetcher{entered: make(chan struct{}), release: make(chan struct{})}
	e, clock := newTestEarth(t, Options{Fetcher: f})
	e.SetMarkerFile(sources.Resource{Name: "markers.csv"})
	e.Render("")

	<-f.entered
	e.RefreshMarkers()
	close(f.release)
	e.Wait()
	step(e, clock, time.Millisecond)

	ms := e.Markers()
	if len(ms) != 1 || ms[0].Lat != 2 {
		t.Errorf("markers = %+v; want only the newer response", ms)
	}
}

type errFetcher struct{}

func (errFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("offline")
}

func TestFetchErrorKeepsMarkers(t *testing.T) {
	e, clock := newTestEarth(t, Options{Fetcher: errFetcher{}})
	e.SetMarkerData([]sources.Record{{"lat": "3", "lon": "3"}})
	e.SetMarkerFile(sources.Resource{Name: "https://example.com/markers.json", Type: "JSON"})
	e.Render("")
	e.Wait()
	step(e, clock, time.Millisecond)
	if ms := e.Markers(); len(ms) != 1 || ms[0].Lat != 3 {
		t.Errorf("markers = %+v; want the previous set", ms)
	}
}

func TestTable(t *testing.T) {
	tbl := NewTable("people", []string{"name", "age"})
	tbl.AddRow("bob", "30")
	tbl.AddRow("Alice", "9")
	tbl.AddRow("carol", "100")

	if !tbl.Sort("age") {
		t.Fatal("Sort(age) failed")
	}
	if got := tbl.Rows[0][1] + "," + tbl.Rows[1][1] + "," + tbl.Rows[2][1]; got != "9,30,100" {
		t.Errorf("ascending ages = %s; want 9,30,100", got)
	}
	tbl.Sort("AGE")
	if col, desc := tbl.SortedBy(); col != "age" || !desc {
		t.Errorf("SortedBy() = %q, %v; want age, true", col, desc)
	}
	if tbl.Rows[0][1] != "100" {
		t.Errorf("descending first age = %s; want 100", tbl.Rows[0][1])
	}
	tbl.Sort("name")
	if tbl.Rows[0][0] != "Alice" {
		t.Errorf("first name = %s; want Alice", tbl.Rows[0][0])
	}
	if tbl.Sort("height") {
		t.Error("Sort on a missing column should fail")
	}
}

func TestDescriptionTable(t *testing.T) {
	e, _ := newTestEarth(t, Options{})
	e.SetMarkerDescription([]string{"name", " ", "Description"})
	e.SetMarkerData([]sources.Record{
		{"lat": "1", "lon": "1", "name": "a", "description": "first"},
		{"lat": "2", "lon": "2", "name": "b"},
	})
	e.Render("")

	tbl := e.Table()
	if tbl == nil {
		t.Fatal("expected a generated table")
	}
	if strings.Join(tbl.Columns, ",") != "name,Description" {
		t.Errorf("columns = %v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0][1] != "first" {
		t.Errorf("rows = %v", tbl.Rows)
	}
	if tbl.ID != "map-markers-table" {
		t.Errorf("table id = %q", tbl.ID)
	}
}

func TestLoadTable(t *testing.T) {
	e, _ := newTestEarth(t, Options{})
	tbl := NewTable("sites", []string{"lat", "lon", "name"})
	tbl.AddRow("10", "20", "x")
	e.LoadTable(tbl)
	e.Render("")
	if e.Table() != tbl {
		t.Error("a provided table should survive redraws")
	}
	if len(e.Markers()) != 1 {
		t.Errorf("got %d markers from the table; want 1", len(e.Markers()))
	}
}
