package server

import (
	"github.com/fathima-sithara/chatroom-service/internal/config"
	"github.com/fathima-sithara/chatroom-service/internal/handlers"
	"github.com/fathima-sithara/chatroom-service/internal/metrics"
	"github.com/fathima-sithara/chatroom-service/internal/middleware"
	"github.com/fathima-sithara/chatroom-service/internal/routes"
	"github.com/fathima-sithara/chatroom-service/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// New initializes the Fiber application with config, middlewares, and routes.
// limiter may be nil.
func New(cfg *config.Config, h *handlers.Handler, hub *ws.Hub, m *metrics.Metrics, limiter fiber.Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger))
	if limiter != nil {
		app.Use(limiter)
	}

	routes.Setup(app, h, hub, m)
	return app
}
