package storage

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const maxUploadBytes = 10 << 20

var allowedKinds = map[string]bool{"post": true, "avatar": true}

// RegisterRoutes mounts POST /uploads. The multipart field "file" carries an
// image; "kind" is post (default) or avatar.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/uploads", authMiddleware, func(c *fiber.Ctx) error {
		header, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file is required")
		}
		if header.Size > maxUploadBytes {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, "file too large")
		}
		if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
			return fiber.NewError(fiber.StatusUnsupportedMediaType, "only images can be uploaded")
		}

		kind := c.FormValue("kind", "post")
		if !allowedKinds[kind] {
			return fiber.NewError(fiber.StatusBadRequest, "unknown kind")
		}

		file, err := header.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer file.Close()

		userID, _ := c.Locals("user_id").(string)
		obj, err := svc.Upload(c.Context(), userID, kind, file)
		if errors.Is(err, ErrNoUploader) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		if errors.Is(err, ErrUploadFailed) {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(obj)
	})
}
