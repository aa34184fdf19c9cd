package earth

import (
	"image/color"
	"math"
	"regexp"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette holds the map colors as #rrggbb strings.
type Palette struct {
	Border        string
	Countries     []string
	Marker        string
	MarkerOpacity float64
	Ocean         string
}

// Category10 is the default country fill cycle.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

func DefaultPalette() Palette {
	return Palette{
		Border:        "#766951",
		Countries:     append([]string(nil), Category10...),
		Marker:        "#000000",
		MarkerOpacity: 0.7,
		Ocean:         "#d8ffff",
	}
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidColor reports whether s is a six digit hex color.
func ValidColor(s string) bool {
	if !hexColor.MatchString(s) {
		return false
	}
	_, err := colorful.Hex(s)
	return err == nil
}

// ParseColor converts a #rrggbb color and an opacity into an RGBA value.
func ParseColor(s string, opacity float64) (color.RGBA, bool) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b := c.RGB255()
	a := math.Max(0, math.Min(1, opacity))
	// premultiplied
	return color.RGBA{
		R: uint8(float64(r) * a),
		G: uint8(float64(g) * a),
		B: uint8(float64(b) * a),
		A: uint8(255 * a),
	}, true
}

func validColors(in []string) []string {
	var out []string
	for _, c := range in {
		c = strings.TrimSpace(c)
		if ValidColor(c) {
			out = append(out, c)
		}
	}
	return out
}

// Palette returns a copy of the current palette.
func (e *Earth) Palette() Palette {
	p := e.palette
	p.Countries = append([]string(nil), p.Countries...)
	return p
}

// SetPalette replaces each valid color of p. Invalid or empty entries keep their
// current value; invalid country colors are dropped from the list, and an empty
// result keeps the current list. Opacity is not taken from p.
func (e *Earth) SetPalette(p Palette) Palette {
	if ValidColor(p.Border) {
		e.palette.Border = p.Border
	}
	if ValidColor(p.Marker) {
		e.palette.Marker = p.Marker
	}
	if ValidColor(p.Ocean) {
		e.palette.Ocean = p.Ocean
	}
	if cs := validColors(p.Countries); len(cs) > 0 {
		e.palette.Countries = cs
	}
	return e.Palette()
}

func (e *Earth) SetBorderColor(c string) string {
	if ValidColor(c) {
		e.palette.Border = c
	}
	return e.palette.Border
}

func (e *Earth) SetMarkerColor(c string) string {
	if ValidColor(c) {
		e.palette.Marker = c
	}
	return e.palette.Marker
}

func (e *Earth) SetOceanColor(c string) string {
	if ValidColor(c) {
		e.palette.Ocean = c
	}
	return e.palette.Ocean
}

// SetMarkerOpacity accepts values from 0.0 to 1.0, truncated to one decimal place.
func (e *Earth) SetMarkerOpacity(v float64) float64 {
	if math.IsNaN(v) {
		return e.palette.MarkerOpacity
	}
	tenths := math.Floor(v * 10)
	if tenths > -1 && tenths < 11 {
		e.palette.MarkerOpacity = tenths / 10
	}
	return e.palette.MarkerOpacity
}

func (e *Earth) countryColor(index int) string {
	cs := e.palette.Countries
	if len(cs) == 0 {
		cs = Category10
	}
	return cs[index%len(cs)]
}
