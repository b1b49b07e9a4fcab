// Package server assembles the fiber application: middleware chain, routes and
// error handling.
package server

import (
	"errors"
	"time"

	"warbler/internal/handlers"
	"warbler/internal/middleware"
	"warbler/internal/monitoring"
	"warbler/internal/services"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

// Services are the application services the handlers are built on.
type Services struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Social   *services.SocialService
	Messages *services.MessageService
	Likes    *services.LikeService
}

// Options configure New.
type Options struct {
	Sessions *session.Manager
	Log      *logrus.Entry
	// AccessLog enables fiber's request logger.
	AccessLog bool
	// Broker describes the event broker in /health, e.g. "connected" or "disabled".
	Broker string
}

// New builds the application with every route registered.
func New(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "warbler",
		ErrorHandler: errorHandler(opts.Log),
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(monitoring.Instrument())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": opts.Broker,
		})
	})
	app.Get("/metrics", monitoring.Handler())

	app.Use(opts.Sessions.Middleware())
	app.Use(middleware.LoadCurrentUser(svc.Users, opts.Log))

	handlers.NewHomeHandler(svc.Users, svc.Messages, svc.Likes).RegisterRoutes(app)
	handlers.NewAuthHandler(svc.Auth, opts.Log).RegisterRoutes(app)
	handlers.NewUserHandler(svc.Users, svc.Social, svc.Likes, opts.Log).RegisterRoutes(app)
	handlers.NewMessageHandler(svc.Messages, opts.Log).RegisterRoutes(app)

	return app
}

func errorHandler(log *logrus.Entry) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"message": fe.Message,
			})
		}

		log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).WithError(err).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
