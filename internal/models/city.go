package models

// City holds the geocoded coordinates for a city name. Rows act as a
// local cache in front of the geocoding API: once a city has been
// resolved it is never fetched from upstream again.
type City struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}
