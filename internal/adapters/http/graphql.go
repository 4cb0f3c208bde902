package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	hotelFields := func() graphql.Fields {
		return graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"address":  &graphql.Field{Type: graphql.String},
			"price":    &graphql.Field{Type: graphql.Float},
			"currency": &graphql.Field{Type: graphql.String},
			"stars":    &graphql.Field{Type: graphql.Int},
			"location": &graphql.Field{Type: geoPointType},
		}
	}

	hotelType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Hotel",
		Fields: hotelFields(),
	})

	rankedFields := hotelFields()
	rankedFields["distance_m"] = &graphql.Field{Type: graphql.Float}
	rankedFields["rank"] = &graphql.Field{Type: graphql.Int}
	rankedFields["nearest"] = &graphql.Field{Type: graphql.Boolean}
	rankedHotelType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "RankedHotel",
		Fields: rankedFields,
	})

	rankingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Ranking",
		Fields: graphql.Fields{
			"reference":  &graphql.Field{Type: geoPointType},
			"nearest_id": &graphql.Field{Type: graphql.String},
			"hotels":     &graphql.Field{Type: graphql.NewList(rankedHotelType)},
		},
	})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Selection",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"session":     &graphql.Field{Type: graphql.String},
			"point":       &graphql.Field{Type: geoPointType},
			"selected_at": &graphql.Field{Type: graphql.String},
		},
	})

	mapViewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapView",
		Fields: graphql.Fields{
			"selection":  &graphql.Field{Type: selectionType},
			"nearest_id": &graphql.Field{Type: graphql.String},
			"hotels":     &graphql.Field{Type: graphql.NewList(rankedHotelType)},
			"bounds":     &graphql.Field{Type: boundsType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hotels": &graphql.Field{
				Type:        graphql.NewList(hotelType),
				Description: "List all hotels in catalog order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					hotels, err := deps.Hotels.List(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, len(hotels))
					for i, h := range hotels {
						out[i] = hotelToMap(h)
					}
					return out, nil
				},
			},
			"hotel": &graphql.Field{
				Type:        hotelType,
				Description: "Get a hotel by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					h, err := deps.Hotels.GetByID(p.Context, id)
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return hotelToMap(*h), nil
				},
			},
			"nearby": &graphql.Field{
				Type:        rankingType,
				Description: "Rank hotels by distance from a point",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ref := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					limit := p.Args["limit"].(int)
					ranking, err := deps.Hotels.Nearby(p.Context, ref, limit)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"reference":  pointToMap(ranking.Reference),
						"nearest_id": ranking.NearestID,
						"hotels":     rankedToMaps(ranking.Hotels),
					}, nil
				},
			},
			"selection": &graphql.Field{
				Type:        mapViewType,
				Description: "The current map view for a session",
				Args: graphql.FieldConfigArgument{
					"session": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					view, err := deps.Selections.Current(p.Context, p.Args["session"].(string))
					if errors.Is(err, domain.ErrNoSelection) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return viewToMap(view), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"select": &graphql.Field{
				Type:        mapViewType,
				Description: "Record a map click and return the ranked view around it",
				Args: graphql.FieldConfigArgument{
					"lat":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"session": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					view, err := deps.Selections.Select(p.Context, p.Args["session"].(string), point, "graphql")
					if err != nil {
						return nil, err
					}
					return viewToMap(view), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}

// graphql-go resolves plain maps reliably; embedded structs are flattened by hand.

func pointToMap(p domain.GeoPoint) map[string]interface{} {
	return map[string]interface{}{"lat": p.Lat, "lon": p.Lon}
}

func hotelToMap(h domain.Hotel) map[string]interface{} {
	return map[string]interface{}{
		"id":       h.ID,
		"name":     h.Name,
		"address":  h.Address,
		"price":    h.Price,
		"currency": h.Currency,
		"stars":    h.Stars,
		"location": pointToMap(h.Location),
	}
}

func rankedToMaps(ranked []domain.RankedHotel) []map[string]interface{} {
	out := make([]map[string]interface{}, len(ranked))
	for i, r := range ranked {
		m := hotelToMap(r.Hotel)
		m["distance_m"] = r.DistanceMeters
		m["rank"] = r.Rank
		m["nearest"] = r.Nearest
		out[i] = m
	}
	return out
}

func viewToMap(v *domain.MapView) map[string]interface{} {
	return map[string]interface{}{
		"selection": map[string]interface{}{
			"id":          v.Selection.ID,
			"session":     v.Selection.Session,
			"point":       pointToMap(v.Selection.Point),
			"selected_at": v.Selection.SelectedAt.Format(time.RFC3339Nano),
		},
		"nearest_id": v.NearestID,
		"hotels":     rankedToMaps(v.Hotels),
		"bounds": map[string]interface{}{
			"min_lat": v.Bounds.MinLat,
			"min_lon": v.Bounds.MinLon,
			"max_lat": v.Bounds.MaxLat,
			"max_lon": v.Bounds.MaxLon,
		},
	}
}
