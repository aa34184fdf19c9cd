package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Route is an origin and an ordered chain of waypoints, each [lon, lat].
type Route struct {
	Origin       []float64
	Destinations [][]float64
}

// Valid reports whether every coordinate has exactly two finite components and
// there is at least one waypoint.
func (r Route) Valid() bool {
	if !pair(r.Origin) || len(r.Destinations) == 0 {
		return false
	}
	for _, d := range r.Destinations {
		if !pair(d) {
			return false
		}
	}
	return true
}

func pair(c []float64) bool {
	if len(c) != 2 {
		return false
	}
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type routeJSON struct {
	Origin      []float64       `json:"origin"`
	Destination json.RawMessage `json:"destination"`
}

// destinations accepts a single waypoint or a list of them.
func destinations(raw json.RawMessage) ([][]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var many [][]float64
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one []float64
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return [][]float64{one}, nil
}

// ParseRoutesJSON reads an array of {origin, destination} objects. Entries that do
// not decode are skipped; arity is checked later by Valid.
func ParseRoutesJSON(r io.Reader) ([]Route, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]Route, 0, len(raw))
	for _, item := range raw {
		var rj routeJSON
		if err := json.Unmarshal(item, &rj); err != nil {
			continue
		}
		dests, err := destinations(rj.Destination)
		if err != nil {
			continue
		}
		out = append(out, Route{Origin: rj.Origin, Destinations: dests})
	}
	return out, nil
}

// ParseRoutesCSV reads routes from either "origin"/"destination" columns holding
// JSON arrays, or from origin_lon, origin_lat, destination_lon, destination_lat.
func ParseRoutesCSV(r io.Reader) ([]Route, error) {
	recs, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	out := make([]Route, 0, len(recs))
	for _, rec := range recs {
		if o, ok := rec["origin"]; ok {
			var origin []float64
			if json.Unmarshal([]byte(o), &origin) != nil {
				continue
			}
			dests, err := destinations(json.RawMessage(strings.TrimSpace(rec["destination"])))
			if err != nil {
				continue
			}
			out = append(out, Route{Origin: origin, Destinations: dests})
			continue
		}
		nums, ok := floats(rec, "origin_lon", "origin_lat", "destination_lon", "destination_lat")
		if !ok {
			continue
		}
		out = append(out, Route{Origin: nums[:2], Destinations: [][]float64{nums[2:]}})
	}
	return out, nil
}

func floats(rec Record, keys ...string) ([]float64, bool) {
	out := make([]float64, len(keys))
	for i, k := range keys {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[k]), 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// ParseRoutes parses csv or json route data.
func ParseRoutes(typ string, r io.Reader) ([]Route, error) {
	switch strings.ToLower(typ) {
	case "csv":
		return ParseRoutesCSV(r)
	case "json", "":
		return ParseRoutesJSON(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
}

// LoadRoutes fetches a location and parses it as routes of the given type.
func LoadRoutes(ctx context.Context, f Fetcher, location, typ string) ([]Route, error) {
	data, err := f.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	return ParseRoutes(typ, bytes.NewReader(data))
}
