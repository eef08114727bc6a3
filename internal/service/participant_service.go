package service

import (
	"context"
	"errors"
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/events"
	"github.com/fathima-sithara/chatroom-service/internal/metrics"
	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/fathima-sithara/chatroom-service/internal/repository"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"go.uber.org/zap"
)

type ParticipantService struct {
	participants repository.ParticipantRepository
	messages     repository.MessageRepository
	publisher    events.Publisher
	validator    *utils.Validator
	metrics      *metrics.Metrics
	log          *zap.Logger
	now          func() time.Time
}

func NewParticipantService(
	participants repository.ParticipantRepository,
	messages repository.MessageRepository,
	publisher events.Publisher,
	validator *utils.Validator,
	m *metrics.Metrics,
	log *zap.Logger,
) *ParticipantService {
	return &ParticipantService{
		participants: participants,
		messages:     messages,
		publisher:    publisher,
		validator:    validator,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

// Register adds a participant and announces it to the room. If the
// announcement cannot be stored the participant is removed again.
func (s *ParticipantService) Register(ctx context.Context, in models.ParticipantInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}

	_, err := s.participants.FindByName(ctx, in.Name)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, repository.ErrParticipantNotFound) {
		return err
	}

	now := s.now()
	p := &models.Participant{Name: in.Name, LastStatus: utils.NowMillis(now)}
	if err := s.participants.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateParticipant) {
			return ErrConflict
		}
		return err
	}

	msg := models.StatusMessage(in.Name, models.JoinText, utils.Clock(now))
	if err := s.messages.Insert(ctx, msg); err != nil {
		if delErr := s.participants.Delete(ctx, in.Name); delErr != nil {
			s.log.Error("rollback participant failed",
				zap.String("name", in.Name),
				zap.Error(delErr),
			)
		}
		return err
	}

	s.metrics.ParticipantRegistered()
	publish(ctx, s.publisher, s.log, events.TypeParticipantJoined, *msg)
	return nil
}

func (s *ParticipantService) List(ctx context.Context) ([]models.Participant, error) {
	return s.participants.List(ctx)
}

// Heartbeat refreshes the last activity of name.
func (s *ParticipantService) Heartbeat(ctx context.Context, name string) error {
	if name == "" {
		return ErrNotFound
	}
	err := s.participants.Touch(ctx, name, utils.NowMillis(s.now()))
	if errors.Is(err, repository.ErrParticipantNotFound) {
		return ErrNotFound
	}
	return err
}
