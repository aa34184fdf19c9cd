package earth

import (
	"fmt"
	"log"
	"math"
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sudorandom/earth-viz/pkg/anim"
	"github.com/sudorandom/earth-viz/pkg/scene"
	"github.com/sudorandom/earth-viz/pkg/sources"
	"github.com/sudorandom/earth-viz/pkg/utils"
)

// RouteSource is where Travel gets its routes: a RouteResource, RouteRecords or a
// RoutePath.
type RouteSource interface {
	routeSource()
}

// RouteResource is a csv or json file of routes.
type RouteResource sources.Resource

// RouteRecords are routes supplied directly.
type RouteRecords []sources.Route

// RoutePath is a json file location, relative to Options.BaseURL unless absolute.
type RoutePath string

func (RouteResource) routeSource() {}
func (RouteRecords) routeSource()  {}
func (RoutePath) routeSource()     {}

// Icon is a shape that travels along each route segment. Rings are in icon-local
// coordinates, centered on the origin and pointing up.
type Icon struct {
	Rings  [][]scene.Point
	Scale  float64
	Orient bool
	Fill   string
}

// ArrowIcon is a small arrowhead that turns to follow the route.
func ArrowIcon() *Icon {
	return &Icon{
		Rings:  [][]scene.Point{{{X: 0, Y: -6}, {X: 4, Y: 4}, {X: 0, Y: 2}, {X: -4, Y: 4}}},
		Orient: true,
	}
}

func (i *Icon) height() float64 {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range i.Rings {
		for _, p := range r {
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minY, 0) {
		return 0
	}
	return maxY - minY
}

var csvType = regexp.MustCompile(`(?i)csv`)

// routeSegment is one leg of a route, frozen in the projection that was active when
// the route was created.
type routeSegment struct {
	route sources.Route
	index int
}

type travelPlan struct {
	icon     *Icon
	duration time.Duration
	loop     bool
	combined bool
}

// Travel draws routes and animates travel along them over d, 1000ms when d is not
// positive. Without an icon each segment is revealed in turn; with one the icon
// moves along each segment, and combined also reveals the line behind it. Looping
// routes restart on an interval. Before the first Render the call is deferred.
func (e *Earth) Travel(src RouteSource, icon *Icon, d time.Duration, loop, combined bool) {
	if d <= 0 {
		d = defaultTravel
	}
	d = d.Truncate(time.Millisecond)
	if icon != nil && len(icon.Rings) == 0 {
		icon = nil
	}
	plan := travelPlan{icon: icon, duration: d, loop: loop, combined: combined}
	e.whenRendered(func() { e.route(src, plan) })
}

func (e *Earth) route(src RouteSource, plan travelPlan) {
	switch s := src.(type) {
	case RouteRecords:
		e.animateRoutes(e.createRoutes(s), plan)
	case RouteResource:
		typ := "json"
		if csvType.MatchString(s.Type) {
			typ = "csv"
		}
		e.loadRoutes(e.resolve(s.Name), typ, plan)
	case RoutePath:
		e.loadRoutes(e.resolve(string(s)), "json", plan)
	}
}

// resolve turns a relative route location into one under the base URL or directory.
func (e *Earth) resolve(loc string) string {
	if e.baseURL == "" || utils.IsRemote(loc) {
		return loc
	}
	if utils.IsRemote(e.baseURL) {
		base, err := url.Parse(e.baseURL)
		if err != nil {
			return loc
		}
		ref, err := url.Parse(loc)
		if err != nil {
			return loc
		}
		return base.ResolveReference(ref).String()
	}
	if filepath.IsAbs(loc) {
		return loc
	}
	return filepath.Join(e.baseURL, loc)
}

func (e *Earth) loadRoutes(location, typ string, plan travelPlan) {
	if e.fetcher == nil {
		log.Printf("[routes] No fetcher configured for %s", location)
		return
	}
	ctx := e.ctx
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		routes, err := sources.LoadRoutes(ctx, e.fetcher, location, typ)
		e.post(func() {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("[routes] Failed to load %s: %v", location, err)
				return
			}
			e.animateRoutes(e.createRoutes(routes), plan)
		})
	}()
}

// createRoutes projects every valid route into its own group in the routes layer
// and returns the new groups.
func (e *Earth) createRoutes(routes []sources.Route) []*scene.Layer {
	if e.proj == nil {
		return nil
	}
	layer := e.scene.Layer(e.layerID("routes"))
	if layer == nil {
		layer = e.scene.Append(&scene.Layer{ID: e.layerID("routes")})
	}
	var created []*scene.Layer
	for _, r := range routes {
		if !r.Valid() {
			continue
		}
		group := layer.AddChild(&scene.Layer{
			ID:    fmt.Sprintf("%s-route-%d", e.id, len(layer.Children)),
			Class: "route",
		})
		ox, oy, _ := e.proj.Project(r.Origin[0], r.Origin[1])
		from := scene.Point{X: ox, Y: oy}
		for i, w := range r.Destinations {
			x, y, _ := e.proj.Project(w[0], w[1])
			to := scene.Point{X: x, Y: y}
			seg := scene.NewPath(scene.KindLine, "travel-route")
			seg.Rings = [][]scene.Point{{from, to}}
			seg.Stroke = e.palette.Marker
			seg.StrokeWidth = 1
			seg.Data = &routeSegment{route: r, index: i}
			group.Add(seg)
			from = to
		}
		created = append(created, group)
	}
	e.fire(eventRoutesCreated)
	return created
}

func (e *Earth) animateRoutes(groups []*scene.Layer, plan travelPlan) {
	for _, g := range groups {
		e.animateRoute(g, plan)
	}
}

// animateRoute runs a route group once, or immediately and then on an interval when
// looping.
func (e *Earth) animateRoute(group *scene.Layer, plan travelPlan) {
	segs := group.Paths
	if len(segs) == 0 {
		return
	}
	seg := plan.duration / time.Duration(len(segs))
	var run *anim.Task
	start := func(time.Time) {
		run.Cancel()
		run = e.sched.Tween(e.routeSteps(group, segs, seg, plan)...)
		e.track(run)
	}
	start(e.clock())
	if !plan.loop {
		return
	}
	interval := plan.duration*2 + 20*time.Millisecond
	if plan.icon != nil {
		interval = plan.duration + 20*time.Millisecond
	}
	e.track(e.sched.Every(interval, start))
}

func (e *Earth) routeSteps(group *scene.Layer, segs []*scene.Path, d time.Duration, plan travelPlan) []anim.Tween {
	reveal := plan.icon == nil || plan.combined
	if reveal {
		for _, s := range segs {
			l := s.Length()
			s.DashArray = []float64{l, l}
			s.DashOffset = l
		}
	}
	steps := make([]anim.Tween, 0, len(segs))
	for _, s := range segs {
		s := s
		l := s.Length()
		var icon *scene.Path
		steps = append(steps, anim.Tween{
			Duration: d,
			Ease:     anim.Linear,
			OnStart: func() {
				if plan.icon != nil {
					icon = e.newIconPath(plan.icon)
					group.Add(icon)
				}
			},
			Update: func(t float64) {
				if reveal {
					s.DashOffset = l * (1 - t)
				}
				if icon != nil {
					icon.Transform = travelTransform(s, plan.icon, t)
				}
			},
			OnEnd: func() {
				if icon != nil {
					group.RemovePath(icon)
					icon = nil
				}
			},
		})
	}
	return steps
}

func (e *Earth) newIconPath(i *Icon) *scene.Path {
	p := scene.NewPath(scene.KindPolygon, "travel-icon")
	p.Rings = i.Rings
	p.Fill = e.palette.Marker
	if ValidColor(i.Fill) {
		p.Fill = i.Fill
	}
	return p
}

// travelTransform places an icon at fraction t of a segment. The icon is offset
// from the line to sit beside it and, when oriented, turned toward a point slightly
// ahead.
func travelTransform(seg *scene.Path, i *Icon, t float64) *scene.Affine {
	l := seg.Length()
	p := seg.PointAtLength(t * l)
	a := seg.PointAtLength(math.Min(t+0.05, 1) * l)
	dx, dy := a.X-p.X, a.Y-p.Y

	scale := i.Scale
	if scale == 0 {
		scale = 1
	}
	side := 1.0
	if dx < 0 {
		side = -1
	}
	out := &scene.Affine{
		TX:    p.X + 3*side,
		TY:    p.Y - (i.height()/2+6)*scale*side,
		Scale: i.Scale,
	}
	if i.Orient {
		out.Rotate = 90 - math.Atan2(-dy, dx)*180/math.Pi
	}
	return out
}

func (e *Earth) track(t *anim.Task) {
	live := e.routeTasks[:0]
	for _, rt := range e.routeTasks {
		if rt.Active() {
			live = append(live, rt)
		}
	}
	e.routeTasks = append(live, t)
}

// ClearRoutes stops every route animation and removes the routes.
func (e *Earth) ClearRoutes() {
	for _, t := range e.routeTasks {
		t.Cancel()
	}
	e.routeTasks = nil
	if e.scene != nil {
		e.scene.Remove(e.layerID("routes"))
	}
}
