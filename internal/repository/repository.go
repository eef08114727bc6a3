//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../../mocks/mock_repository.go -package=mocks
package repository

import (
	"context"
	"errors"

	"github.com/fathima-sithara/chatroom-service/internal/models"
)

var (
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("participant already exists")
)

// ParticipantRepository defines the participant data operations.
type ParticipantRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, p *models.Participant) error
	FindByName(ctx context.Context, name string) (*models.Participant, error)
	List(ctx context.Context) ([]models.Participant, error)
	Touch(ctx context.Context, name string, at int64) error
	FindInactive(ctx context.Context, threshold int64) ([]models.Participant, error)
	DeleteInactive(ctx context.Context, name string, threshold int64) (bool, error)
	Delete(ctx context.Context, name string) error
}

// MessageRepository defines the message log operations.
type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// ListVisible returns messages viewer may read. A limit of 0 means no limit.
	ListVisible(ctx context.Context, viewer string, limit int64) ([]models.Message, error)
}
