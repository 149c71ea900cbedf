package feed

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

var validate = validator.New()

// RegisterRoutes mounts /posts and /users under r. authMiddleware must put
// the caller's id in the "user_id" local.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	posts := r.Group("/posts")

	posts.Get("/", func(c *fiber.Ctx) error {
		list, err := svc.Explore(c.Context())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(list)
	})

	posts.Get("/following", authMiddleware, func(c *fiber.Ctx) error {
		list, err := svc.Following(c.Context(), currentUser(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"posts": list})
	})

	posts.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req PostInput
		if err := bind(c, &req); err != nil {
			return err
		}
		post, err := svc.CreatePost(c.Context(), currentUser(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	posts.Get("/:id", func(c *fiber.Ctx) error {
		post, err := svc.Post(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(post)
	})

	posts.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req PostInput
		if err := bind(c, &req); err != nil {
			return err
		}
		post, err := svc.UpdatePost(c.Context(), c.Params("id"), currentUser(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(post)
	})

	posts.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeletePost(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	posts.Post("/:id/comment", authMiddleware, func(c *fiber.Ctx) error {
		var req CommentInput
		if err := bind(c, &req); err != nil {
			return err
		}
		comment, err := svc.AddComment(c.Context(), c.Params("id"), currentUser(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	posts.Put("/:id/comment/:cid", authMiddleware, func(c *fiber.Ctx) error {
		var req CommentInput
		if err := bind(c, &req); err != nil {
			return err
		}
		comment, err := svc.UpdateComment(c.Context(), c.Params("id"), c.Params("cid"), currentUser(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(comment)
	})

	posts.Delete("/:id/comment/:cid", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteComment(c.Context(), c.Params("id"), c.Params("cid"), currentUser(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	posts.Post("/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		liked, count, err := svc.ToggleLike(c.Context(), c.Params("id"), currentUser(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(LikeResult{Liked: liked, LikesCount: count})
	})

	users := r.Group("/users")

	users.Post("/:id/follow", authMiddleware, func(c *fiber.Ctx) error {
		target := c.Params("id")
		if target == currentUser(c) {
			return fiber.NewError(fiber.StatusBadRequest, "cannot follow yourself")
		}
		if err := svc.Follow(c.Context(), currentUser(c), target); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	users.Delete("/:id/follow", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Unfollow(c.Context(), currentUser(c), c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
