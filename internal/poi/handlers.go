package poi

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/stations", listHandler(svc.Stations))
	r.Get("/events", listHandler(svc.Events))
	r.Get("/bikes", listHandler(svc.Bikes))
	r.Get("/restaurants", listHandler(svc.Restaurants))
	r.Get("/donations", listHandler(svc.Donations))
}

func listHandler[T any](load func(context.Context) ([]T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := load(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(items)
	}
}
