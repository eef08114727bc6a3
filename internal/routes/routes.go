package routes

import (
	"github.com/fathima-sithara/chatroom-service/internal/handlers"
	"github.com/fathima-sithara/chatroom-service/internal/metrics"
	"github.com/fathima-sithara/chatroom-service/internal/middleware"
	"github.com/fathima-sithara/chatroom-service/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func Setup(app *fiber.App, h *handlers.Handler, hub *ws.Hub, m *metrics.Metrics) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	app.Post("/participants", h.CreateParticipant)
	app.Get("/participants", h.ListParticipants)

	app.Post("/messages", middleware.Identity(), h.PostMessage)
	app.Get("/messages", middleware.Identity(), h.ListMessages)
	app.Post("/status", middleware.Identity(), h.Heartbeat)

	if hub != nil {
		app.Get("/ws", ws.Upgrade(), hub.Handler())
	}
}
