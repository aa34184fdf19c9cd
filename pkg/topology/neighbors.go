package topology

import (
	"encoding/json"
	"sort"
)

// arcIndexes collects the absolute arc indexes referenced by an object.
func arcIndexes(o *Object) []int {
	var out []int
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch x := v.(type) {
		case float64:
			i := int(x)
			if i < 0 {
				i = ^i
			}
			out = append(out, i)
		case []interface{}:
			for _, e := range x {
				walk(e)
			}
		}
	}
	if len(o.Arcs) > 0 {
		var raw interface{}
		if err := json.Unmarshal(o.Arcs, &raw); err == nil {
			walk(raw)
		}
	}
	for _, g := range o.Geometries {
		out = append(out, arcIndexes(g)...)
	}
	return out
}

// Neighbors returns, for each object, the sorted indexes of the objects it shares
// at least one arc with.
func Neighbors(objects []*Object) [][]int {
	byArc := make(map[int][]int)
	for i, o := range objects {
		seen := make(map[int]bool)
		for _, a := range arcIndexes(o) {
			if seen[a] {
				continue
			}
			seen[a] = true
			byArc[a] = append(byArc[a], i)
		}
	}

	sets := make([]map[int]bool, len(objects))
	for i := range sets {
		sets[i] = make(map[int]bool)
	}
	for _, owners := range byArc {
		for _, a := range owners {
			for _, b := range owners {
				if a != b {
					sets[a][b] = true
				}
			}
		}
	}

	out := make([][]int, len(objects))
	for i, s := range sets {
		out[i] = make([]int, 0, len(s))
		for n := range s {
			out[i] = append(out[i], n)
		}
		sort.Ints(out[i])
	}
	return out
}
