package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/sudorandom/earth-viz/pkg/earth"
	"github.com/sudorandom/earth-viz/pkg/sources"
	"github.com/sudorandom/earth-viz/pkg/utils"
	"github.com/sudorandom/earth-viz/pkg/viewer"
)

var (
	styleFlag     = flag.String("style", "Orthographic", "Map projection")
	widthFlag     = flag.Int("width", 960, "Map width and height in pixels")
	markersFlag   = flag.String("markers", "", "Marker data file, URL or websocket feed")
	markerType    = flag.String("marker-type", "csv", "Marker data format: csv or json")
	markerSize    = flag.String("marker-size", "3", "Marker size in pixels, or a percentage for sizes relative to the data")
	animationFlag = flag.String("animation", "ping", "Marker animation: ping, pulse or none")
	describeFlag  = flag.String("describe", "", "Comma separated marker columns to show in the description table")
	refreshFlag   = flag.Duration("refresh", 0, "Reload marker data at this interval (at least 1m)")
	routesFlag    = flag.String("routes", "", "Route file or URL to animate")
	topologyFlag  = flag.String("topology", "", "TopoJSON file or URL to use instead of the embedded atlas")
	routeLoop     = flag.Bool("route-loop", true, "Repeat route animations")
	geoipFlag     = flag.String("geoip", "", "GeoLite2 City database used to place markers by IP")
	cacheFlag     = flag.String("cache", "", "Directory for the download cache (disabled when empty)")
	captureFlag   = flag.String("capture", "captures", "Directory for PNG snapshots")
	tpsFlag       = flag.Int("tps", 60, "Ticks per second")
	headlessFlag  = flag.Bool("headless", false, "Run without a local window")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	fetcher := &utils.Fetcher{TTL: time.Hour, LogPrefix: "[fetch]"}
	if *cacheFlag != "" {
		cache, err := utils.OpenCache(*cacheFlag)
		if err != nil {
			log.Fatalf("Failed to open cache: %v", err)
		}
		defer cache.Close()
		fetcher.Cache = cache
	}

	opts := earth.Options{ID: "earth", Width: *widthFlag, Style: *styleFlag, Fetcher: fetcher}
	if *geoipFlag != "" {
		db, err := sources.OpenGeoIP(*geoipFlag)
		if err != nil {
			log.Fatalf("Failed to open GeoIP database: %v", err)
		}
		defer db.Close()
		opts.Locator = db
	}

	e, err := earth.New(opts)
	if err != nil {
		log.Fatalf("Failed to create map: %v", err)
	}
	defer e.Close()

	e.SetTopoFile(*topologyFlag)
	e.SetMarkerSize(*markerSize)
	e.SetMarkerAnimation(*animationFlag)
	if *describeFlag != "" {
		e.SetMarkerDescription(strings.Split(*describeFlag, ","))
	}
	if *markersFlag != "" {
		if _, ok := e.SetMarkerFile(sources.Resource{Name: *markersFlag, Type: *markerType}); !ok {
			log.Printf("Ignoring marker source %q", *markersFlag)
		}
	}
	e.Render(*styleFlag)
	if *refreshFlag > 0 {
		e.RefreshMarkerData(*refreshFlag)
	}
	if *routesFlag != "" {
		e.Travel(earth.RoutePath(*routesFlag), earth.ArrowIcon(), 0, *routeLoop, false)
	}

	v := viewer.New(e)
	v.CaptureDir = *captureFlag

	ebiten.SetTPS(*tpsFlag)
	if *headlessFlag {
		log.Println("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(*widthFlag, *widthFlag)
		ebiten.SetWindowTitle("Earth Viewer")
	}
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
