package topology

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/biter777/countries"
	geojson "github.com/paulmach/go.geojson"
)

//go:embed data/world-110m.json
var world110m []byte

var (
	worldOnce sync.Once
	worldTopo *Topology
	worldErr  error
)

// World returns the embedded 1:110m world topology with "countries" and "land" objects.
func World() (*Topology, error) {
	worldOnce.Do(func() {
		worldTopo, worldErr = Decode(world110m)
	})
	return worldTopo, worldErr
}

// disputed territories carry negative ids in the topology and have no ISO numeric code.
var disputed = map[int][2]string{
	-1: {"CY", "Northern Cyprus"},
	-2: {"RS", "Kosovo"},
	-3: {"SO", "Somaliland"},
}

// Country is a country polygon with its ISO 3166 identity.
type Country struct {
	TopoID     int
	ISO        string
	Name       string
	Feature    *geojson.Feature
	Neighbors  []int
	ColorIndex int
}

// LookupISO maps a topology id (ISO 3166 numeric) to its alpha-2 code and English name.
// Unknown ids return empty strings.
func LookupISO(id int) (iso, name string) {
	if d, ok := disputed[id]; ok {
		return d[0], d[1]
	}
	c := countries.ByNumeric(id)
	if c == countries.Unknown {
		return "", ""
	}
	return c.Alpha2(), c.String()
}

// Countries decodes the "countries" collection in declaration order together with
// the adjacency derived from shared arcs.
func (t *Topology) Countries() ([]*Country, error) {
	obj, ok := t.Objects["countries"]
	if !ok {
		return nil, fmt.Errorf("%w: countries", ErrUnknownObject)
	}
	members := obj.Geometries
	neighbors := Neighbors(members)

	out := make([]*Country, 0, len(members))
	index := make(map[int]int, len(members))
	for i, m := range members {
		g, err := t.Geometry(m)
		if err != nil {
			continue
		}
		f := geojson.NewFeature(g)
		c := &Country{Feature: f}
		if id, ok := m.NumericID(); ok {
			c.TopoID = id
			c.ISO, c.Name = LookupISO(id)
			f.ID = id
		}
		f.SetProperty("iso", c.ISO)
		f.SetProperty("name", c.Name)
		index[i] = len(out)
		out = append(out, c)
	}
	for i := range members {
		pos, ok := index[i]
		if !ok {
			continue
		}
		for _, n := range neighbors[i] {
			if np, ok := index[n]; ok {
				out[pos].Neighbors = append(out[pos].Neighbors, np)
			}
		}
	}
	return out, nil
}
