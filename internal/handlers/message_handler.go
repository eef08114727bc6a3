package handlers

import (
	"github.com/fathima-sithara/chatroom-service/internal/middleware"
	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/fathima-sithara/chatroom-service/internal/service"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// PostMessage handles POST /messages.
func (h *Handler) PostMessage(c *fiber.Ctx) error {
	var in models.MessageInput
	body, err := utils.DecodeBody(c.Body(), &in)
	if err == nil {
		in.From = middleware.UserFrom(c)
		err = h.rejectBody(in, body)
	}
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.messages.Post(c.UserContext(), in.From, in); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// ListMessages handles GET /messages?limit=N.
func (h *Handler) ListMessages(c *fiber.Ctx) error {
	limit, err := service.ParseLimit(c.Query("limit"))
	if err != nil {
		return h.writeError(c, err)
	}
	out, err := h.messages.List(c.UserContext(), middleware.UserFrom(c), limit)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}
