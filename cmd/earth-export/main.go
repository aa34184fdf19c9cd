package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/sudorandom/earth-viz/pkg/earth"
	"github.com/sudorandom/earth-viz/pkg/raster"
	"github.com/sudorandom/earth-viz/pkg/scene"
	"github.com/sudorandom/earth-viz/pkg/sources"
	"github.com/sudorandom/earth-viz/pkg/utils"
)

// frameStep is the simulated time between ticks when settling or recording a map.
const frameStep = 50 * time.Millisecond

type MapFlags struct {
	Style      string `help:"Map projection." default:"Orthographic"`
	Width      int    `help:"Map width and height in pixels." default:"960"`
	Markers    string `help:"Marker data file or URL."`
	MarkerType string `help:"Marker data format: csv or json." default:"csv"`
	MarkerSize string `help:"Marker size in pixels, or a percentage for relative sizes." default:"3"`
	Routes     string `help:"Route file or URL to draw."`
	Topology   string `help:"TopoJSON file or URL to use instead of the embedded atlas."`
	GeoIP      string `name:"geoip" help:"GeoLite2 City database used to place markers by IP."`
	Cache      string `help:"Directory for the download cache."`
}

// session is a map driven by a simulated clock.
type session struct {
	earth *earth.Earth
	now   time.Time
	close []func()
}

func (f *MapFlags) open() (*session, error) {
	s := &session{now: time.Now()}
	fetcher := &utils.Fetcher{TTL: time.Hour, LogPrefix: "[fetch]"}
	if f.Cache != "" {
		cache, err := utils.OpenCache(f.Cache)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		s.close = append(s.close, func() { cache.Close() })
		fetcher.Cache = cache
	}

	opts := earth.Options{
		ID:      "earth",
		Width:   f.Width,
		Style:   f.Style,
		Fetcher: fetcher,
		Clock:   func() time.Time { return s.now },
	}
	if f.GeoIP != "" {
		db, err := sources.OpenGeoIP(f.GeoIP)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open geoip: %w", err)
		}
		s.close = append(s.close, func() { db.Close() })
		opts.Locator = db
	}

	e, err := earth.New(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.earth = e
	s.close = append(s.close, e.Close)

	if f.Topology != "" {
		e.SetTopoFile(f.Topology)
		e.Wait()
		e.Tick(s.now)
	}
	e.SetMarkerAnimation("none")
	e.SetMarkerSize(f.MarkerSize)
	if f.Markers != "" {
		if _, ok := e.SetMarkerFile(sources.Resource{Name: f.Markers, Type: f.MarkerType}); !ok {
			log.Printf("Ignoring marker source %q", f.Markers)
		}
	}
	e.Render(f.Style)
	e.Stop()
	if f.Routes != "" {
		e.Travel(earth.RoutePath(f.Routes), nil, 0, false, false)
	}
	return s, nil
}

// settle applies fetched data and runs the clock forward by d.
func (s *session) settle(d time.Duration) {
	s.earth.Wait()
	for end := s.now.Add(d); !s.now.After(end); s.now = s.now.Add(frameStep) {
		s.earth.Tick(s.now)
	}
}

func (s *session) Close() {
	for i := len(s.close) - 1; i >= 0; i-- {
		s.close[i]()
	}
}

func (s *session) write(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		sc := s.earth.Scene()
		img := image.NewRGBA(image.Rect(0, 0, sc.Width, sc.Height))
		raster.Clear(img, raster.Background)
		raster.Rasterize(img, sc)
		return raster.SavePNG(img, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := scene.WriteSVG(f, s.earth.Scene()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type RenderCmd struct {
	MapFlags `embed:""`
	Output string `arg:"" help:"Output file; .png is rasterized, anything else is SVG."`
}

func (c *RenderCmd) Run() error {
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	// long enough for a route to finish drawing
	s.settle(3 * time.Second)
	if err := s.write(c.Output); err != nil {
		return err
	}
	log.Printf("Wrote %s", c.Output)
	return nil
}

type TransitionCmd struct {
	MapFlags `embed:""`
	To       string        `required:"" help:"Projection to morph into."`
	Duration time.Duration `help:"Length of the transition." default:"750ms"`
	Frames   int           `help:"Number of frames to write." default:"30"`
	Dir      string        `help:"Output directory for the frames." default:"frames"`
}

func (c *TransitionCmd) Run() error {
	if c.Frames < 1 {
		return fmt.Errorf("frames must be positive, got %d", c.Frames)
	}
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	s.settle(0)

	s.earth.TransitionTo(c.To, c.Duration)
	step := c.Duration / time.Duration(c.Frames)
	for i := 0; i < c.Frames; i++ {
		s.now = s.now.Add(step)
		s.earth.Tick(s.now)
		if err := s.write(filepath.Join(c.Dir, fmt.Sprintf("frame-%03d.png", i))); err != nil {
			return err
		}
	}
	log.Printf("Wrote %d frames to %s (style is now %s)", c.Frames, c.Dir, s.earth.Style())
	return nil
}

type GeoJSONCmd struct {
	MapFlags `embed:""`
	Output string `arg:"" optional:"" help:"Output file (stdout when omitted)."`
}

func (c *GeoJSONCmd) Run() error {
	s, err := c.open()
	if err != nil {
		return err
	}
	defer s.Close()
	s.settle(0)

	if c.Output == "" {
		return s.earth.WriteGeoJSON(os.Stdout)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	if err := s.earth.WriteGeoJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// dataURL expands the short names of well-known data files.
func dataURL(name string) string {
	switch name {
	case "atlas":
		return sources.WorldAtlasURL
	case "cities":
		return sources.WorldCitiesURL
	case "geoip":
		return sources.GeoLiteCityURL
	}
	return name
}

type FetchCmd struct {
	URL  string `arg:"" help:"Location to download, or one of: atlas, cities, geoip."`
	Path string `arg:"" help:"Destination file."`
}

func (c *FetchCmd) Run() error {
	return utils.DownloadFile(dataURL(c.URL), c.Path)
}

type CacheCmd struct {
	List     CacheListCmd     `cmd:"" help:"List cached downloads."`
	Prefetch CachePrefetchCmd `cmd:"" help:"Download files into the cache in one batch."`
	Clear    CacheClearCmd    `cmd:"" help:"Remove every cached download."`
}

// CacheDir names the badger directory a cache subcommand works on.
type CacheDir struct {
	Dir string `required:"" help:"Cache directory."`
}

func (c *CacheDir) open() (*utils.Cache, error) {
	cache, err := utils.OpenCache(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache, nil
}

type CacheListCmd struct {
	CacheDir `embed:""`
}

func (c *CacheListCmd) Run() error {
	cache, err := c.open()
	if err != nil {
		return err
	}
	defer cache.Close()
	return cache.Entries(func(e utils.Entry) error {
		expires := "never"
		if !e.Expires.IsZero() {
			expires = e.Expires.Format(time.RFC3339)
		}
		fmt.Printf("%10d  %-25s  %s\n", e.Size, expires, e.Key)
		return nil
	})
}

type CachePrefetchCmd struct {
	CacheDir `embed:""`
	URLs []string      `arg:"" help:"Locations to download, or: atlas, cities, geoip."`
	TTL  time.Duration `name:"ttl" help:"Expiry of the cached copies; zero keeps them." default:"24h"`
}

func (c *CachePrefetchCmd) Run() error {
	fetcher := &utils.Fetcher{LogPrefix: "[prefetch]"}
	batch := make(map[string][]byte, len(c.URLs))
	for _, name := range c.URLs {
		url := dataURL(name)
		data, err := fetcher.Fetch(context.Background(), url)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", url, err)
		}
		batch[url] = data
	}

	cache, err := c.open()
	if err != nil {
		return err
	}
	defer cache.Close()
	if err := cache.PutBatch(batch, c.TTL); err != nil {
		return err
	}
	log.Printf("Cached %d files in %s", len(batch), c.Dir)
	return nil
}

type CacheClearCmd struct {
	CacheDir `embed:""`
}

func (c *CacheClearCmd) Run() error {
	cache, err := c.open()
	if err != nil {
		return err
	}
	defer cache.Close()
	return cache.Clear()
}

var cli struct {
	Render     RenderCmd     `cmd:"" help:"Render a map to SVG or PNG."`
	Transition TransitionCmd `cmd:"" help:"Write the frames of a projection transition."`
	GeoJSON    GeoJSONCmd    `cmd:"" name:"geojson" help:"Export countries, markers and routes as GeoJSON."`
	Fetch      FetchCmd      `cmd:"" help:"Download a data file."`
	Cache      CacheCmd      `cmd:"" help:"Inspect and fill the download cache."`
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx := kong.Parse(&cli,
		kong.Name("earth-export"),
		kong.Description("Render and export maps without a window."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
