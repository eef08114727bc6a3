package handlers

import (
	"github.com/fathima-sithara/chatroom-service/internal/middleware"
	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// CreateParticipant handles POST /participants.
func (h *Handler) CreateParticipant(c *fiber.Ctx) error {
	var in models.ParticipantInput
	body, err := utils.DecodeBody(c.Body(), &in)
	if err == nil {
		err = h.rejectBody(in, body)
	}
	if err != nil {
		return h.writeError(c, err)
	}
	if err := h.participants.Register(c.UserContext(), in); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// ListParticipants handles GET /participants.
func (h *Handler) ListParticipants(c *fiber.Ctx) error {
	out, err := h.participants.List(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(out)
}

// Heartbeat handles POST /status.
func (h *Handler) Heartbeat(c *fiber.Ctx) error {
	if err := h.participants.Heartbeat(c.UserContext(), middleware.UserFrom(c)); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
