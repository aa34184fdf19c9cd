package sources

const (
	// WorldAtlasURL serves the same 1:110m topology that is embedded in the binary.
	WorldAtlasURL = "https://cdn.jsdelivr.net/npm/world-atlas@1/world/110m.json"

	// WorldCitiesURL is a large CSV with latitude and longitude columns, usable as marker data.
	WorldCitiesURL = "https://raw.githubusercontent.com/dr5hn/countries-states-cities-database/master/csv/cities.csv"

	GeoLiteCityURL = "https://github.com/P3TERX/GeoLite.mmdb/raw/download/GeoLite2-City.mmdb"
)
