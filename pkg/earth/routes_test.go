package earth

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sudorandom/earth-viz/pkg/scene"
	"github.com/sudorandom/earth-viz/pkg/sources"
)

func routeGroups(e *Earth) []*scene.Layer {
	l := e.Scene().Layer("map-routes")
	if l == nil {
		return nil
	}
	return l.Children
}

var testRoutes = RouteRecords{
	{Origin: []float64{-74, 40.7}, Destinations: [][]float64{{-0.1, 51.5}, {2.35, 48.85}}},
	{Origin: []float64{-74, 40.7, 0}, Destinations: [][]float64{{2.35, 48.85}}},
	{Origin: []float64{139.7, 35.7}, Destinations: [][]float64{{151.2}}},
}

func TestTravelDeferredUntilRendered(t *testing.T) {
	e, _ := newTestEarth(t, Options{})
	e.Travel(testRoutes, nil, 0, false, false)
	if len(routeGroups(e)) != 0 {
		t.Fatal("routes should wait for the first render")
	}
	e.Render("")
	groups := routeGroups(e)
	if len(groups) != 1 {
		t.Fatalf("got %d route groups; want 1 (invalid entries dropped)", len(groups))
	}
	if n := len(groups[0].Paths); n != 2 {
		t.Errorf("got %d segments; want 2", n)
	}
	for _, p := range groups[0].Paths {
		if p.Class != "travel-route" || p.Kind != scene.KindLine {
			t.Errorf("segment class %q kind %v", p.Class, p.Kind)
		}
	}

	// a later render does not repeat the deferred call
	e.Render("")
	if n := len(routeGroups(e)); n != 1 {
		t.Errorf("after re-render got %d route groups; want 1", n)
	}
}

func TestRouteReveal(t *testing.T) {
	e, clock := newTestEarth(t, Options{})
	e.Render("Equirectangular")
	e.Travel(testRoutes[:1], nil, time.Second, false, false)

	segs := routeGroups(e)[0].Paths
	l0, l1 := segs[0].Length(), segs[1].Length()
	if segs[0].DashOffset != l0 || segs[1].DashOffset != l1 {
		t.Fatal("segments should start hidden")
	}
	step(e, clock, 500*time.Millisecond)
	if segs[0].DashOffset != 0 {
		t.Errorf("first segment offset = %f; want 0", segs[0].DashOffset)
	}
	if segs[1].DashOffset != l1 {
		t.Errorf("second segment offset = %f; want %f", segs[1].DashOffset, l1)
	}
	step(e, clock, 250*time.Millisecond)
	if math.Abs(segs[1].DashOffset-l1/2) > 1e-9 {
		t.Errorf("second segment offset = %f; want %f", segs[1].DashOffset, l1/2)
	}
	step(e, clock, 250*time.Millisecond)
	if segs[1].DashOffset != 0 {
		t.Errorf("second segment offset = %f; want 0", segs[1].DashOffset)
	}
}

func TestRouteLoop(t *testing.T) {
	e, clock := newTestEarth(t, Options{})
	e.Render("Equirectangular")
	e.Travel(RouteRecords{{Origin: []float64{0, 0}, Destinations: [][]float64{{40, 0}}}}, nil, time.Second, true, false)
	seg := routeGroups(e)[0].Paths[0]

	step(e, clock, time.Second)
	if seg.DashOffset != 0 {
		t.Fatalf("offset after one pass = %f; want 0", seg.DashOffset)
	}
	// loops every 2*D + 20ms
	step(e, clock, time.Second+20*time.Millisecond)
	if seg.DashOffset != seg.Length() {
		t.Errorf("offset at loop restart = %f; want %f", seg.DashOffset, seg.Length())
	}
}

func TestRouteIcon(t *testing.T) {
	e, clock := newTestEarth(t, Options{})
	e.Render("Equirectangular")
	e.Travel(RouteRecords{{Origin: []float64{0, 0}, Destinations: [][]float64{{40, 0}}}}, ArrowIcon(), time.Second, false, false)
	group := routeGroups(e)[0]
	seg := group.Paths[0]
	if seg.DashArray != nil {
		t.Error("an icon route without combined should not reveal the line")
	}

	step(e, clock, 500*time.Millisecond)
	if len(group.Paths) != 2 {
		t.Fatalf("got %d paths in the group; want the segment and the icon", len(group.Paths))
	}
	icon := group.Paths[1]
	if icon.Transform == nil {
		t.Fatal("icon has no transform")
	}
	mid := seg.PointAtLength(seg.Length() / 2)
	if math.Abs(icon.Transform.TX-(mid.X+3)) > 1e-6 || math.Abs(icon.Transform.TY-(mid.Y-11)) > 1e-6 {
		t.Errorf("icon at (%f, %f); want (%f, %f)", icon.Transform.TX, icon.Transform.TY, mid.X+3, mid.Y-11)
	}
	if math.Abs(icon.Transform.Rotate-90) > 1e-6 {
		t.Errorf("icon rotation = %f; want 90 for an eastbound route", icon.Transform.Rotate)
	}

	step(e, clock, 500*time.Millisecond)
	if len(group.Paths) != 1 {
		t.Errorf("icon should be removed at the end of the segment")
	}
}

func TestRouteCombined(t *testing.T) {
	e, clock := newTestEarth(t, Options{})
	e.Render("Equirectangular")
	e.Travel(RouteRecords{{Origin: []float64{0, 0}, Destinations: [][]float64{{40, 0}}}}, ArrowIcon(), time.Second, false, true)
	seg := routeGroups(e)[0].Paths[0]
	step(e, clock, 500*time.Millisecond)
	if math.Abs(seg.DashOffset-seg.Length()/2) > 1e-9 {
		t.Errorf("combined offset = %f; want %f", seg.DashOffset, seg.Length()/2)
	}
}

func TestRoutesFromFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "routes-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	data := `[{"origin":[0,0],"destination":[10,10]},{"origin":[1],"destination":[[2,2]]}]`
	if err := os.WriteFile(filepath.Join(dir, "routes.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	e, clock := newTestEarth(t, Options{BaseURL: dir})
	e.Render("")
	e.Travel(RoutePath("routes.json"), nil, 0, false, false)
	e.Wait()
	step(e, clock, time.Millisecond)
	if n := len(routeGroups(e)); n != 1 {
		t.Errorf("got %d route groups from file; want 1", n)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, loc, want string
	}{
		{"", "routes.json", "routes.json"},
		{"https://example.com/data/", "routes.json", "https://example.com/data/routes.json"},
		{"https://example.com/data/", "/routes.json", "https://example.com/routes.json"},
		{"https://example.com/data/", "http://other.org/r.json", "http://other.org/r.json"},
		{"/srv/data", "routes.json", "/srv/data/routes.json"},
		{"/srv/data", "/tmp/r.json", "/tmp/r.json"},
	}
	for _, tt := range tests {
		e := &Earth{baseURL: tt.base}
		if got := e.resolve(tt.loc); got != tt.want {
			t.Errorf("resolve(%q) with base %q = %q; want %q", tt.loc, tt.base, got, tt.want)
		}
	}
}

type countingFetcher struct{ n int }

func (c *countingFetcher) Fetch(context.Context, string) ([]byte, error) {
	c.n++
	return []byte("origin_lon,origin_lat,destination_lon,destination_lat\n0,0,5,5\n"), nil
}

func TestRoutesCSVResource(t *testing.T) {
	f := &countingFetcher{}
	e, clock := newTestEarth(t, Options{Fetcher: f})
	e.Render("")
	e.Travel(RouteResource(sources.Resource{Name: "routes.csv", Type: "CSV"}), nil, 0, false, false)
	e.Wait()
	step(e, clock, time.Millisecond)
	if f.n != 1 || len(routeGroups(e)) != 1 {
		t.Errorf("fetched %d times, %d route groups; want 1 and 1", f.n, len(routeGroups(e)))
	}
}

func TestRoutesFrozen(t *testing.T) {
	e, clock := newTestEarth(t, Options{})
	e.Render("")
	e.Travel(testRoutes[:1], nil, 0, false, false)
	seg := routeGroups(e)[0].Paths[0]
	before := seg.Rings[0][0]
	step(e, clock, 500*time.Millisecond)
	if seg.Rings[0][0] != before {
		t.Error("routes should keep the geometry they were created with")
	}
	if e.Scene().Layers[len(e.Scene().Layers)-1].ID != "map-routes" {
		t.Error("routes should be drawn above the map")
	}
}

// heldFetcher blocks every fetch until release is closed.
type heldFetcher struct{ release chan struct{} }

func (f *heldFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	<-f.release
	return []byte("origin_lon,origin_lat,destination_lon,destination_lat\n0,0,40,0\n"), nil
}

func TestOverlappingTravelKeepsEachPlan(t *testing.T) {
	f := &heldFetcher{release: make(chan struct{})}
	e, clock := newTestEarth(t, Options{Fetcher: f})
	e.Render("Equirectangular")
	e.Travel(RouteResource(sources.Resource{Name: "a.csv", Type: "csv"}), ArrowIcon(), time.Second, true, false)
	e.Travel(RouteRecords{{Origin: []float64{0, 10}, Destinations: [][]float64{{40, 10}}}}, nil, time.Second, false, false)

	close(f.release)
	e.Wait()
	step(e, clock, time.Millisecond)

	groups := routeGroups(e)
	if len(groups) != 2 {
		t.Fatalf("got %d route groups; want 2", len(groups))
	}
	local, remote := groups[0], groups[1]
	if local.Paths[0].DashArray == nil {
		t.Error("records route should be revealed without an icon")
	}

	step(e, clock, 500*time.Millisecond)
	if remote.Paths[0].DashArray != nil {
		t.Errorf("fetched route dash = %v; want the icon plan without a reveal", remote.Paths[0].DashArray)
	}
	if len(remote.Paths) != 2 {
		t.Errorf("fetched route has %d paths; want the segment and its icon", len(remote.Paths))
	}
	if len(local.Paths) != 1 {
		t.Errorf("records route has %d paths; want no icon", len(local.Paths))
	}
}
