package domain

import (
	"time"
)

// Hotel is one entry of the fixed catalog shown on the map.
type Hotel struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency,omitempty"`
	Stars    int      `json:"stars,omitempty"`
	Location GeoPoint `json:"location"`
}

// RankedHotel is a hotel annotated with its distance from a reference point.
type RankedHotel struct {
	Hotel
	DistanceMeters float64 `json:"distance_m"`
	Rank           int     `json:"rank"` // 1-based
	Nearest        bool    `json:"nearest"`
}

// Ranking is the catalog ordered by ascending distance from Reference.
type Ranking struct {
	Reference GeoPoint      `json:"reference"`
	NearestID string        `json:"nearest_id,omitempty"`
	Hotels    []RankedHotel `json:"hotels"`
}

// Selection is the last point a user clicked within a session.
type Selection struct {
	ID         string    `json:"id"`
	Session    string    `json:"session"`
	Point      GeoPoint  `json:"point"`
	SelectedAt time.Time `json:"selected_at"`
}

// MapView is the render payload for the map widget after a click.
type MapView struct {
	Selection Selection     `json:"selection"`
	NearestID string        `json:"nearest_id,omitempty"`
	Hotels    []RankedHotel `json:"hotels"`
	Bounds    Bounds        `json:"bounds"`
}
