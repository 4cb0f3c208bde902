package http

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

// Marker kinds understood by the map widget.
const (
	MarkerNearest   = "nearest"
	MarkerHotel     = "hotel"
	MarkerSelection = "selection"
)

// MapViewGeoJSON converts a view into markers: the clicked point first, then every
// hotel in ranked order. Exactly one hotel carries the nearest marker.
func MapViewGeoJSON(view *domain.MapView) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.BBox = geojson.NewBBox(orb.Bound{
		Min: orb.Point{view.Bounds.MinLon, view.Bounds.MinLat},
		Max: orb.Point{view.Bounds.MaxLon, view.Bounds.MaxLat},
	})

	sel := geojson.NewFeature(toOrb(view.Selection.Point))
	sel.ID = view.Selection.ID
	sel.Properties["marker"] = MarkerSelection
	sel.Properties["session"] = view.Selection.Session
	sel.Properties["selected_at"] = view.Selection.SelectedAt
	fc.Append(sel)

	for _, h := range view.Hotels {
		f := geojson.NewFeature(toOrb(h.Location))
		f.ID = h.ID
		f.Properties["id"] = h.ID
		f.Properties["name"] = h.Name
		f.Properties["address"] = h.Address
		f.Properties["price"] = h.Price
		f.Properties["currency"] = h.Currency
		f.Properties["distance_m"] = h.DistanceMeters
		f.Properties["rank"] = h.Rank
		if h.ID == view.NearestID && h.Nearest {
			f.Properties["marker"] = MarkerNearest
		} else {
			f.Properties["marker"] = MarkerHotel
		}
		fc.Append(f)
	}
	return fc
}

// GeoJSON positions are [lon, lat].
func toOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
