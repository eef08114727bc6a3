package handlers

import (
	"errors"

	"github.com/fathima-sithara/chatroom-service/internal/service"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	participants *service.ParticipantService
	messages     *service.MessageService
	validator    *utils.Validator
	log          *zap.Logger
}

func NewHandler(participants *service.ParticipantService, messages *service.MessageService, v *utils.Validator, log *zap.Logger) *Handler {
	return &Handler{participants: participants, messages: messages, validator: v, log: log}
}

// rejectBody reports decode problems together with the rule violations of in.
// A clean body is left to the service to validate.
func (h *Handler) rejectBody(in any, body *utils.BodyError) error {
	if body == nil {
		return nil
	}
	return h.validator.Check(in, body)
}

// writeError maps service errors to responses. Store failures surface their
// message as plain text.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ve.Details)
	case errors.Is(err, service.ErrConflict):
		return c.SendStatus(fiber.StatusConflict)
	case errors.Is(err, service.ErrNotFound):
		return c.SendStatus(fiber.StatusNotFound)
	case errors.Is(err, service.ErrUnprocessable):
		return c.Status(fiber.StatusUnprocessableEntity).JSON([]string{err.Error()})
	default:
		h.log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
}
