package server

import (
	"backend-bandoxanh/internal/auth"
	"backend-bandoxanh/internal/cache"
	"backend-bandoxanh/internal/config"
	"backend-bandoxanh/internal/db"
	"backend-bandoxanh/internal/feed"
	"backend-bandoxanh/internal/logging"
	"backend-bandoxanh/internal/mapview"
	"backend-bandoxanh/internal/poi"
	"backend-bandoxanh/internal/storage"
	"backend-bandoxanh/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cachePrefix = "bandoxanh:cache:"

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     db.Querier
	Redis  *redis.Client
	Stream *stream.Hub
	Logger *zap.Logger
}

// NewServer wires every route. db may be nil, in which case data routes
// fail per request instead of at startup.
func NewServer(cfg config.Config, db db.Querier, redisClient *redis.Client, log *zap.Logger) *Server {
	log = logging.OrNop(log)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient, log.Named("stream")),
		Logger: log,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	pois := poi.NewService(s.DB)
	posts := feed.NewService(s.DB,
		feed.WithCache(cache.NewRedis(s.Redis, cachePrefix), s.Cfg.FeedCacheTTL),
		feed.WithPublisher(s.Stream),
		feed.WithLogger(s.Logger.Named("feed")),
	)

	api := s.App.Group("/api")
	poi.RegisterRoutes(api, pois)
	mapview.RegisterRoutes(api, pois)
	feed.RegisterRoutes(api, posts, jwtMiddleware)
	storage.RegisterRoutes(api, storage.NewService(s.DB, s.uploader()), jwtMiddleware)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

func (s *Server) uploader() storage.Uploader {
	if s.Cfg.CloudinaryURL == "" {
		return nil
	}
	cld, err := storage.NewCloudinary(s.Cfg.CloudinaryURL)
	if err != nil {
		s.Logger.Warn("uploads disabled", zap.Error(err))
		return nil
	}
	return cld
}

// errorHandler renders every error as {"error": message}.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
