package projection

import (
	"regexp"
	"sort"
	"strings"
)

// Shape hints how a projection fills the drawing surface.
type Shape string

const (
	ShapeSphere    Shape = "sphere"
	ShapeRectangle Shape = "rectangle"
)

// DefaultKey is the style used when none is requested. A registry without it is unusable.
const DefaultKey = "globe"

// Descriptor is an immutable catalog entry. Each call to New builds a fresh projection.
type Descriptor struct {
	Key       string
	Name      string
	Rotates   bool
	Shape     Shape
	Parallels *[2]float64

	build func() *Projection
}

// New returns a new projection instance configured for this entry.
func (d *Descriptor) New() *Projection {
	p := d.build()
	if d.Parallels != nil {
		p.SetParallels(d.Parallels[0], d.Parallels[1])
	}
	return p
}

// Sphere reports whether the projection is scaled to fill the surface as a disc.
func (d *Descriptor) Sphere() bool {
	return d.Rotates || d.Shape == ShapeSphere
}

// Entry describes a catalog entry before registration. A nil Build means the
// implementation is unavailable and the entry is skipped.
type Entry struct {
	Key       string
	Name      string
	Rotates   bool
	Shape     Shape
	Parallels *[2]float64
	Build     func() *Projection
}

type Registry struct {
	entries map[string]*Descriptor
}

// NewRegistry registers every available entry.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]*Descriptor)}
	for _, e := range entries {
		r.Register(e)
	}
	return r
}

// Register adds an entry, skipping it if it has no implementation or no key.
func (r *Registry) Register(e Entry) bool {
	if e.Build == nil || e.Key == "" {
		return false
	}
	shape := e.Shape
	if shape == "" {
		shape = ShapeRectangle
	}
	r.entries[e.Key] = &Descriptor{
		Key:       e.Key,
		Name:      e.Name,
		Rotates:   e.Rotates,
		Shape:     shape,
		Parallels: e.Parallels,
		build:     e.Build,
	}
	return true
}

var (
	parenthetical = regexp.MustCompile(`\([^)]+\)`)
	nonWord       = regexp.MustCompile(`[^\w]`)
)

// Key normalizes a style name: "2D" is the legacy name of the equirectangular map,
// parenthetical suffixes and non-word characters are dropped and the rest lower-cased.
func Key(name string) string {
	if name == "2D" {
		name = "equirectangular"
	}
	name = parenthetical.ReplaceAllString(name, "")
	name = nonWord.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

// Resolve finds the descriptor registered under the normalized name.
func (r *Registry) Resolve(name string) (*Descriptor, bool) {
	d, ok := r.entries[Key(name)]
	return d, ok
}

func (r *Registry) Len() int { return len(r.entries) }

// Names returns the display names of all registered projections, sorted by key.
func (r *Registry) Names() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, r.entries[k].Name)
	}
	return names
}
