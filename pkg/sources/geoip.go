package sources

import (
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// GeoIP resolves IP addresses to coordinates using a MaxMind city database.
type GeoIP struct {
	db *maxminddb.Reader
}

func OpenGeoIP(path string) (*GeoIP, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoIP{db: db}, nil
}

// NewGeoIP reads a database already loaded into memory.
func NewGeoIP(data []byte) (*GeoIP, error) {
	db, err := maxminddb.FromBytes(data)
	if err != nil {
		return nil, err
	}
	return &GeoIP{db: db}, nil
}

type cityRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// Locate returns the position and ISO country code recorded for ip. Addresses
// without a location resolve to ok=false.
func (g *GeoIP) Locate(ip string) (lat, lon float64, country string, ok bool) {
	addr := net.ParseIP(ip)
	if addr == nil || g == nil || g.db == nil {
		return 0, 0, "", false
	}
	var rec cityRecord
	if err := g.db.Lookup(addr, &rec); err != nil {
		return 0, 0, "", false
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return 0, 0, rec.Country.ISOCode, false
	}
	return rec.Location.Latitude, rec.Location.Longitude, rec.Country.ISOCode, true
}

func (g *GeoIP) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}
