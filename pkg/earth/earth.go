// Package earth is an interactive world map: a rotating globe or flat projection
// with colored countries, animated markers, travel routes and animated transitions
// between projections.
//
// An Earth draws into a scene.Scene. It is not safe for concurrent use: the host
// calls every method, including Tick, from one goroutine. Data fetched in the
// background is applied on the next Tick.
package earth

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/sudorandom/earth-viz/pkg/anim"
	"github.com/sudorandom/earth-viz/pkg/geo"
	"github.com/sudorandom/earth-viz/pkg/projection"
	"github.com/sudorandom/earth-viz/pkg/scene"
	"github.com/sudorandom/earth-viz/pkg/sources"
	"github.com/sudorandom/earth-viz/pkg/topology"
	"github.com/sudorandom/earth-viz/pkg/utils"
)

// ErrNoProjection is returned by New when the registry has no default globe.
var ErrNoProjection = errors.New("no default globe projection available")

// Locator resolves an IP address to a position. *sources.GeoIP implements it.
type Locator interface {
	Locate(ip string) (lat, lon float64, country string, ok bool)
}

type Options struct {
	// ID names the drawing surface. Rendering does nothing without one.
	ID    string
	Width int
	Style string

	// BaseURL resolves route locations given as relative paths.
	BaseURL string

	Fetcher  sources.Fetcher
	Locator  Locator
	Clock    anim.Clock
	Registry *projection.Registry
	Topology *topology.Topology
}

const (
	defaultVelocity       = 0.05
	minVelocity           = 0.01
	defaultRate           = 0.005
	defaultMarkerSize     = 3
	defaultMarkerDuration = 1500 * time.Millisecond
	defaultTransition     = 750 * time.Millisecond
	defaultTravel         = 1000 * time.Millisecond
	minRefresh            = 60 * time.Second
)

type Earth struct {
	id       string
	width    int
	baseURL  string
	registry *projection.Registry
	style    *projection.Descriptor
	proj     *projection.Projection

	topo      *topology.Topology
	countries []*topology.Country
	colors    []int

	palette Palette
	scene   *scene.Scene
	clock   anim.Clock
	sched   *anim.Scheduler

	// rotation
	location geo.Location
	velocity float64
	running  bool
	stopped  bool
	lastTick time.Time
	spin     *anim.Task
	dragging bool

	rendered      bool
	transitioning bool
	transitions   []*anim.Task

	handlers map[Event][]Handler
	internal map[Event][]func()
	deferred []func()

	markers        []Marker
	markerFile     sources.Resource
	markerSize     int
	markerRelative bool
	markerAnim     Animation
	markerDuration time.Duration
	markerLoop     *anim.Task
	markerTweens   map[*scene.Path]*anim.Task
	markerDraws    int
	markerDataID   string
	columns        []string
	table          *Table
	tableProvided  bool
	descriptor     bool

	countryHandlers []func(*topology.Country)
	markerHandlers  []func(Marker)

	routeTasks []*anim.Task

	fetcher      sources.Fetcher
	locator      Locator
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.Mutex
	mailbox      []func()
	pending      sync.WaitGroup
	seq          uint64
	refresh      *anim.Task
	refreshEvery time.Duration
	live         context.CancelFunc
}

// New builds an unrendered map. It fails only when no default globe projection is
// registered or the topology cannot be decoded.
func New(opts Options) (*Earth, error) {
	reg := opts.Registry
	if reg == nil {
		reg = projection.DefaultRegistry()
	}
	globe, ok := reg.Resolve(projection.DefaultKey)
	if !ok {
		return nil, ErrNoProjection
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Earth{
		id:             opts.ID,
		width:          opts.Width,
		baseURL:        opts.BaseURL,
		registry:       reg,
		style:          globe,
		palette:        DefaultPalette(),
		clock:          clock,
		sched:          anim.NewScheduler(clock),
		velocity:       defaultVelocity,
		handlers:       make(map[Event][]Handler),
		internal:       make(map[Event][]func()),
		markerSize:     defaultMarkerSize,
		markerAnim:     AnimationPulse,
		markerDuration: defaultMarkerDuration,
		markerTweens:   make(map[*scene.Path]*anim.Task),
		descriptor:     true,
		fetcher:        opts.Fetcher,
		locator:        opts.Locator,
		ctx:            ctx,
		cancel:         cancel,
	}
	if e.fetcher == nil {
		e.fetcher = &utils.Fetcher{LogPrefix: "[earth]"}
	}
	if opts.Style != "" {
		e.SetStyle(opts.Style)
	}

	topo := opts.Topology
	if topo == nil {
		var err error
		if topo, err = topology.World(); err != nil {
			cancel()
			return nil, err
		}
	}
	if err := e.SetTopology(topo); err != nil {
		cancel()
		return nil, err
	}

	e.internal[eventMarkerData] = []func(){e.drawMarkers}
	e.scene = scene.New(e.id, e.width, e.width)
	return e, nil
}

// Scene returns the drawing surface. It is rebuilt on Render and mutated on Tick.
func (e *Earth) Scene() *scene.Scene { return e.scene }

// Projection returns the active projection, or nil before the first render.
func (e *Earth) Projection() *projection.Projection { return e.proj }

func (e *Earth) ID() string { return e.id }

func (e *Earth) Width() int { return e.width }

// Rendered reports whether the map has been drawn at least once.
func (e *Earth) Rendered() bool { return e.rendered }

// Rotatable reports whether the current style is a globe that can spin.
func (e *Earth) Rotatable() bool { return e.style != nil && e.style.Rotates }

// Rotating reports whether the globe is currently spinning.
func (e *Earth) Rotating() bool { return e.Rotatable() && e.running && !e.stopped }

// Transitioning reports whether a projection transition is in progress.
func (e *Earth) Transitioning() bool { return e.transitioning }

func (e *Earth) Location() geo.Location { return e.location }

func (e *Earth) Velocity() float64 { return e.velocity }

// Style returns the display name of the current style.
func (e *Earth) Style() string { return e.style.Name }

// SupportedTypes lists the display names of every available style.
func (e *Earth) SupportedTypes() []string { return e.registry.Names() }

// Countries returns the decoded countries with their assigned color indexes.
func (e *Earth) Countries() []*topology.Country { return e.countries }

// Tick applies data that arrived in the background and advances every timer and
// animation to now.
func (e *Earth) Tick(now time.Time) {
	e.drain()
	e.sched.Advance(now)
}

// Wait blocks until every outstanding fetch has posted its result. The results are
// applied by the next Tick.
func (e *Earth) Wait() {
	e.pending.Wait()
}

// Close cancels every timer, animation, refresh and in-flight fetch.
func (e *Earth) Close() {
	e.cancel()
	e.sched.CancelAll()
	e.spin, e.refresh, e.markerLoop = nil, nil, nil
	e.routeTasks, e.transitions = nil, nil
	e.markerTweens = make(map[*scene.Path]*anim.Task)
	e.live = nil
}

func (e *Earth) center() (float64, float64) {
	c := math.Floor(float64(e.width) / 2)
	return c, c
}

// scaleFor returns the scale a style uses at the current width: spheres fill the
// surface, everything else scales from a 960 pixel reference map at 150.
func (e *Earth) scaleFor(d *projection.Descriptor) float64 {
	if d.Sphere() {
		return float64(e.width) / 2
	}
	return math.Floor(float64(e.width) / 960 * 150)
}
