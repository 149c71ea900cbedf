package mapview

import (
	"context"
	"strconv"

	"backend-bandoxanh/internal/poi"
	"backend-bandoxanh/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

// Source loads the five point-of-interest lists.
type Source interface {
	All(ctx context.Context) (poi.Lists, error)
}

type Response struct {
	Items   []ItemWithDistance `json:"items"`
	Markers []Marker           `json:"markers"`
	Bounds  *Viewport          `json:"bounds,omitempty"`
}

// RegisterRoutes exposes the same filter the map screen runs locally, for
// clients that would rather not download every list.
func RegisterRoutes(r fiber.Router, src Source) {
	r.Get("/map", func(c *fiber.Ctx) error {
		q, err := queryFromRequest(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		var focus Focus
		if raw := c.Query("focus"); raw != "" {
			key, err := poi.ParseKey(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			focus.Hover(key)
		}
		if err := q.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		lists, err := src.All(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		items := Filter(q, lists)
		resp := Response{Items: items, Markers: focus.Markers(items)}
		if b, ok := Bounds(resp.Items, q.User); ok {
			vp := ViewportOf(b)
			resp.Bounds = &vp
		}
		return c.JSON(resp)
	})
}

func queryFromRequest(c *fiber.Ctx) (Query, error) {
	q := NewQuery()
	if cat := c.Query("category"); cat != "" {
		q.Category = Category(cat)
	}
	q.Search = c.Query("q")

	if raw := c.Query("radius"); raw != "" {
		radius, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, err
		}
		q.RadiusKm = radius
	}

	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw != "" && lngRaw != "" {
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return Query{}, err
		}
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil {
			return Query{}, err
		}
		q.User = &geo.Point{Latitude: lat, Longitude: lng}
	}
	return q, nil
}
