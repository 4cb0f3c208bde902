package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

// HeaderSessionID identifies the map widget instance a click belongs to.
const HeaderSessionID = "X-Session-ID"

// sessionID resolves the caller's session from the header, then the query string.
// An empty result selects the default session.
func sessionID(c *fiber.Ctx) string {
	if s := strings.TrimSpace(c.Get(HeaderSessionID)); s != "" {
		return s
	}
	return strings.TrimSpace(c.Query("session"))
}

// parsePoint reads the required lat and lon query parameters.
func parsePoint(c *fiber.Ctx) (domain.GeoPoint, error) {
	rawLat, rawLon := c.Query("lat"), c.Query("lon")
	if rawLat == "" || rawLon == "" {
		return domain.GeoPoint{}, fiber.NewError(fiber.StatusBadRequest, "lat and lon are required")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return domain.GeoPoint{}, fiber.NewError(fiber.StatusBadRequest, "lat must be a number")
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return domain.GeoPoint{}, fiber.NewError(fiber.StatusBadRequest, "lon must be a number")
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// ListHotelsHandler returns the whole catalog in catalog order.
func ListHotelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hotels, err := deps.Hotels.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		if hotels == nil {
			hotels = []domain.Hotel{}
		}
		return c.JSON(hotels)
	}
}

// GetHotelHandler returns a single hotel by ID.
func GetHotelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "hotel id is required")
		}
		hotel, err := deps.Hotels.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(hotel)
	}
}

// NearbyHotelsHandler ranks the catalog by distance from ?lat=&lon=.
// ?limit= keeps only the closest hotels; 0 or absent returns all of them.
func NearbyHotelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		ranking, err := deps.Hotels.Nearby(c.UserContext(), ref, c.QueryInt("limit", 0))
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(ranking)
	}
}

// selectRequest is the body of POST /v1/selection.
type selectRequest struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Session string   `json:"session"`
}

// SelectHandler records a map click and returns the resulting view.
func SelectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lon == nil {
			return errBadRequest(c, "lat and lon are required")
		}

		session := sessionID(c)
		if session == "" {
			session = strings.TrimSpace(req.Session)
		}

		view, err := deps.Selections.Select(c.UserContext(), session, domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}, "rest")
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// CurrentSelectionHandler returns the view for the session's last click.
func CurrentSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Selections.Current(c.UserContext(), sessionID(c))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// ClearSelectionHandler forgets the session's last click.
func ClearSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Selections.Clear(c.UserContext(), sessionID(c)) {
			return newError(c, fiber.StatusNotFound, "no_selection", domain.ErrNoSelection.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SelectionGeoJSONHandler renders the current view as a GeoJSON FeatureCollection.
func SelectionGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Selections.Current(c.UserContext(), sessionID(c))
		if err != nil {
			return errFromDomain(c, err)
		}

		data, err := MapViewGeoJSON(view).MarshalJSON()
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
