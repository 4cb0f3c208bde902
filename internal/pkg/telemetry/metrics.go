package telemetry

// Span names used for instrumentation.
const (
	SpanHotelsNearby     = "HotelService.Nearby"
	SpanSelectionSelect  = "SelectionService.Select"
	SpanSelectionCurrent = "SelectionService.Current"
)

// Span attribute keys.
const (
	AttrRefLat      = "geo.ref.lat"
	AttrRefLon      = "geo.ref.lon"
	AttrHotelCount  = "hotel.count"
	AttrNearestID   = "hotel.nearest_id"
	AttrCacheHit    = "cache.hit"
	AttrSession     = "selection.session"
	AttrSelectionID = "selection.id"
)
