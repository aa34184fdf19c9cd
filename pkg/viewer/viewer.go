// Package viewer shows an earth.Earth in an ebiten window. The map is rasterized on
// the CPU each frame and uploaded as a single texture; status text is drawn on top.
package viewer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"strings"
	"time"

	"github.com/biter777/countries"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/sudorandom/earth-viz/pkg/earth"
	"github.com/sudorandom/earth-viz/pkg/raster"
	"github.com/sudorandom/earth-viz/pkg/topology"
)

var (
	ColorBackground = raster.Background
	ColorPanel      = color.RGBA{0, 0, 0, 100}
	ColorPanelEdge  = color.RGBA{36, 42, 53, 255}
	ColorAccent     = color.RGBA{0, 191, 255, 255}
)

const (
	wheelStep   = 0.1
	messageTime = 4 * time.Second
)

type Viewer struct {
	Earth *earth.Earth

	// CaptureDir receives PNG snapshots taken with the P key.
	CaptureDir string

	frame      *image.RGBA
	mapImage   *ebiten.Image
	fontSource *text.GoTextFaceSource

	gesture  gesture
	styleIdx int

	message      string
	messageUntil time.Time
}

func New(e *earth.Earth) *Viewer {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("Failed to load font: %v", err)
	}
	v := &Viewer{Earth: e, fontSource: s}
	e.AddOnCountryClick(func(c *topology.Country) {
		v.say(countryLabel(c))
	})
	e.AddOnMarkerClick(func(m earth.Marker) {
		label := m.Description
		if label == "" {
			label = fmt.Sprintf("%.2f, %.2f", m.Lat, m.Lon)
		}
		v.say(label)
	})
	return v
}

func countryLabel(c *topology.Country) string {
	name := c.Name
	if name == "" {
		name = countries.ByName(c.ISO).String()
	}
	if idx := strings.Index(name, " ("); idx != -1 {
		name = name[:idx]
	}
	if c.ISO == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, c.ISO)
}

func (v *Viewer) say(msg string) {
	v.message = msg
	v.messageUntil = time.Now().Add(messageTime)
}

func (v *Viewer) Update() error {
	now := time.Now()
	v.handlePointer()
	v.handleKeys(now)
	v.Earth.Tick(now)
	return nil
}

func (v *Viewer) handlePointer() {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		v.gesture.press(x, y)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		dx, dy, started := v.gesture.move(x, y)
		if started {
			v.Earth.DragStart()
		}
		if dx != 0 || dy != 0 {
			v.Earth.Drag(dx, dy)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		wasDrag := v.gesture.dragging
		if v.gesture.release() {
			v.Earth.Click(x, y)
		} else if wasDrag {
			v.Earth.DragEnd()
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		k0, tx, ty := v.Earth.ZoomLevel(), 0.0, 0.0
		if z := v.Earth.Scene().Transform; z != nil {
			tx, ty = z.TX, z.TY
		}
		k1 := k0 * (1 + wy*wheelStep)
		k1 = math.Max(1, math.Min(10, k1))
		ntx, nty := zoomAt(x, y, k0, tx, ty, k1)
		v.Earth.Zoom(k1, ntx, nty)
	}
}

func (v *Viewer) handleKeys(now time.Time) {
	e := v.Earth
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if e.Rotating() {
			e.Pause()
		} else {
			e.Resume()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		e.IncreaseVelocity(earth.ParseRate("10%"))
		v.say(fmt.Sprintf("velocity %.3f deg/ms", e.Velocity()))
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		e.DecreaseVelocity(earth.ParseRate("10%"))
		v.say(fmt.Sprintf("velocity %.3f deg/ms", e.Velocity()))
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		styles := e.SupportedTypes()
		v.styleIdx = (v.styleIdx + 1) % len(styles)
		e.TransitionTo(styles[v.styleIdx], 0)
		v.say(styles[v.styleIdx])
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		e.Render("")
	case inpututil.IsKeyJustPressed(ebiten.Key0):
		e.Zoom(1, 0, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if v.frame != nil {
			v.captureFrame(now)
		}
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	s := v.Earth.Scene()
	w, h := s.Width, s.Height
	if v.frame == nil || v.frame.Rect.Dx() != w || v.frame.Rect.Dy() != h {
		v.frame = image.NewRGBA(image.Rect(0, 0, w, h))
		v.mapImage = ebiten.NewImage(w, h)
	}
	raster.Clear(v.frame, ColorBackground)
	raster.Rasterize(v.frame, s)
	v.mapImage.WritePixels(v.frame.Pix)
	screen.DrawImage(v.mapImage, nil)

	v.drawStatus(screen)
}

func (v *Viewer) drawStatus(screen *ebiten.Image) {
	if v.fontSource == nil {
		return
	}
	e := v.Earth
	fontSize := 14.0
	margin := 12.0
	face := &text.GoTextFace{Source: v.fontSource, Size: fontSize}

	lines := []string{
		e.Style(),
		fmt.Sprintf("%d markers  zoom %.1fx", len(e.Markers()), e.ZoomLevel()),
	}
	if e.Rotatable() {
		state := "paused"
		if e.Rotating() {
			state = fmt.Sprintf("%.3f deg/ms", e.Velocity())
		}
		lines = append(lines, "rotation "+state)
	}
	cx, cy := ebiten.CursorPosition()
	if p, ok := e.Locate(float64(cx), float64(cy)); ok {
		lines = append(lines, fmt.Sprintf("%.2f, %.2f", p.Lat, p.Lon))
	}
	if v.message != "" && time.Now().Before(v.messageUntil) {
		lines = append(lines, v.message)
	}

	boxW, boxH := 240.0, float64(len(lines))*(fontSize+6)+12
	vector.DrawFilledRect(screen, float32(margin), float32(margin), float32(boxW), float32(boxH), ColorPanel, false)
	vector.StrokeRect(screen, float32(margin), float32(margin), float32(boxW), float32(boxH), 1, ColorPanelEdge, false)
	vector.DrawFilledRect(screen, float32(margin), float32(margin), 4, float32(boxH), ColorAccent, false)

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(margin+12, margin+6+float64(i)*(fontSize+6))
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, line, face, op)
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := v.Earth.Scene()
	return s.Width, s.Height
}
