// Package sources loads marker and route data for the map: CSV and JSON resources,
// a websocket live feed and GeoIP resolution of marker addresses.
package sources

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported resource type")

// Record is one row of marker data keyed by column name.
type Record map[string]string

// Resource names a remote or local data file and its format.
type Resource struct {
	Name string
	Type string
}

var (
	csvOrJSON  = regexp.MustCompile(`(?i)csv|json`)
	liveScheme = regexp.MustCompile(`(?i)^wss?://`)
)

// Normalize defaults the type to csv when it is neither csv nor json. Websocket
// locations are typed "live". A resource without a name is not usable.
func (r Resource) Normalize() (Resource, bool) {
	if r.Name == "" {
		return Resource{}, false
	}
	switch {
	case liveScheme.MatchString(r.Name):
		r.Type = "live"
	case csvOrJSON.MatchString(r.Type):
		r.Type = strings.ToLower(csvOrJSON.FindString(r.Type))
	default:
		r.Type = "csv"
	}
	return r, true
}

// Live reports whether the resource is a websocket feed.
func (r Resource) Live() bool {
	return liveScheme.MatchString(r.Name)
}

// Fetcher retrieves the raw bytes behind a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// LoadRecords fetches a resource and parses it as marker records.
func LoadRecords(ctx context.Context, f Fetcher, res Resource) ([]Record, error) {
	res, ok := res.Normalize()
	if !ok {
		return nil, fmt.Errorf("empty resource name")
	}
	data, err := f.Fetch(ctx, res.Name)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", res.Name, err)
	}
	return ParseRecords(res.Type, bytes.NewReader(data))
}

// ParseRecords parses csv or json marker data.
func ParseRecords(typ string, r io.Reader) ([]Record, error) {
	switch strings.ToLower(typ) {
	case "csv", "":
		return ParseCSV(r)
	case "json", "live":
		return ParseJSON(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
}

// ParseCSV reads a header row followed by data rows. Short rows leave the missing
// columns unset.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var out []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		rec := make(Record, len(header))
		for i, v := range row {
			if i < len(header) {
				rec[header[i]] = v
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseJSON reads an array of objects, or a single object. Values are flattened to
// strings; nested values keep their JSON text.
func ParseJSON(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	var objs []any
	switch v := raw.(type) {
	case []any:
		objs = v
	case map[string]any:
		objs = []any{v}
	default:
		return nil, fmt.Errorf("expected array of objects, got %T", raw)
	}

	out := make([]Record, 0, len(objs))
	for _, o := range objs {
		m, ok := o.(map[string]any)
		if !ok {
			continue
		}
		rec := make(Record, len(m))
		for k, v := range m {
			rec[k] = stringify(v)
		}
		out = append(out, rec)
	}
	return out, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
