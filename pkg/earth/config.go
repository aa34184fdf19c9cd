package earth

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sudorandom/earth-viz/pkg/sources"
)

// SetStyle selects the style used by the next Render. An unknown name keeps the
// current style. It returns the display name of the style in effect.
func (e *Earth) SetStyle(name string) string {
	if d, ok := e.registry.Resolve(name); ok {
		e.style = d
	}
	return e.style.Name
}

// SetMarkerSize accepts a pixel size ("3") or a percentage of the map width ("2%").
// Sizes must be greater than 1 and are floored.
func (e *Earth) SetMarkerSize(s string) int {
	s = strings.TrimSpace(s)
	relative := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || math.IsNaN(v) || v <= 1 {
		return e.markerSize
	}
	e.markerSize = int(math.Floor(v))
	e.markerRelative = relative
	return e.markerSize
}

// MarkerSizeRelative reports whether marker sizes are percentages of the width.
func (e *Earth) MarkerSizeRelative() bool { return e.markerRelative }

func (e *Earth) SetMarkerAnimation(s string) Animation {
	switch a := Animation(strings.ToLower(strings.TrimSpace(s))); a {
	case AnimationPulse, AnimationPing, AnimationNone:
		e.markerAnim = a
	}
	return e.markerAnim
}

// SetMarkerAnimationDuration sets the length of one marker animation cycle. It
// must be longer than 100ms and is truncated to whole milliseconds.
func (e *Earth) SetMarkerAnimationDuration(d time.Duration) time.Duration {
	if d > 100*time.Millisecond {
		e.markerDuration = d.Truncate(time.Millisecond)
	}
	return e.markerDuration
}

// SetDescriptor enables toggling the description table by clicking the map.
func (e *Earth) SetDescriptor(on bool) bool {
	e.descriptor = on
	return e.descriptor
}

// SetMarkerDataID names the description table. Ids may not be empty or start with
// a digit.
func (e *Earth) SetMarkerDataID(id string) string {
	id = strings.TrimSpace(id)
	if id != "" && !unicode.IsDigit([]rune(id)[0]) {
		e.markerDataID = id
	}
	return e.markerDataID
}

// SetMarkerDescription selects the record columns shown in the description table.
func (e *Earth) SetMarkerDescription(columns []string) []string {
	var cols []string
	for _, c := range columns {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) > 0 {
		e.columns = cols
	}
	return append([]string(nil), e.columns...)
}

// SetMarkerFile sets where marker data is loaded from on each render. A ws:// or
// wss:// name subscribes to a live feed instead.
func (e *Earth) SetMarkerFile(res sources.Resource) (sources.Resource, bool) {
	n, ok := res.Normalize()
	if ok {
		e.markerFile = n
	}
	return e.markerFile, ok
}
