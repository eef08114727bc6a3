//go:generate go run go.uber.org/mock/mockgen -source=publisher.go -destination=../../mocks/mock_publisher.go -package=mocks
package events

import (
	"context"
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

const (
	TypeParticipantJoined = "participant.joined"
	TypeParticipantLeft   = "participant.left"
	TypeMessagePosted     = "message.posted"
)

// Event is emitted after a message has been stored.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Message    models.Message `json:"message"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func New(eventType string, msg models.Message) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Message:    msg,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events downstream. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// Fanout publishes every event to all of its publishers.
type Fanout []Publisher

func NewFanout(publishers ...Publisher) Fanout {
	return Fanout(publishers)
}

func (f Fanout) Publish(ctx context.Context, evt Event) error {
	var result *multierror.Error
	for _, p := range f {
		if err := p.Publish(ctx, evt); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (f Fanout) Close() error {
	var result *multierror.Error
	for _, p := range f {
		if err := p.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
