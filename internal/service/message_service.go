package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/events"
	"github.com/fathima-sithara/chatroom-service/internal/metrics"
	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/fathima-sithara/chatroom-service/internal/repository"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"go.uber.org/zap"
)

type MessageService struct {
	participants repository.ParticipantRepository
	messages     repository.MessageRepository
	publisher    events.Publisher
	validator    *utils.Validator
	metrics      *metrics.Metrics
	log          *zap.Logger
	now          func() time.Time
}

func NewMessageService(
	participants repository.ParticipantRepository,
	messages repository.MessageRepository,
	publisher events.Publisher,
	validator *utils.Validator,
	m *metrics.Metrics,
	log *zap.Logger,
) *MessageService {
	return &MessageService{
		participants: participants,
		messages:     messages,
		publisher:    publisher,
		validator:    validator,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

// Post stores a message from a registered sender. from is the identity
// asserted by the caller and is not verified.
func (s *MessageService) Post(ctx context.Context, from string, in models.MessageInput) error {
	in.From = from
	if err := s.validator.Struct(in); err != nil {
		return err
	}

	if _, err := s.participants.FindByName(ctx, from); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return ErrUnknownSender
		}
		return err
	}

	msg := &models.Message{
		From: in.From,
		To:   in.To,
		Text: in.Text,
		Type: in.Type,
		Time: utils.Clock(s.now()),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return err
	}

	s.metrics.MessagePosted()
	publish(ctx, s.publisher, s.log, events.TypeMessagePosted, *msg)
	return nil
}

// ParseLimit reads the limit query value. Empty means no limit.
func ParseLimit(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidLimit
	}
	return int64(n), nil
}

// List returns up to limit messages visible to viewer. A limit of 0 means all.
func (s *MessageService) List(ctx context.Context, viewer string, limit int64) ([]models.Message, error) {
	return s.messages.ListVisible(ctx, viewer, limit)
}
