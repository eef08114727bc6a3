package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/events"
	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/fathima-sithara/chatroom-service/internal/repository"
	"github.com/fathima-sithara/chatroom-service/internal/utils"
	"github.com/fathima-sithara/chatroom-service/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type messageFixture struct {
	svc          *MessageService
	participants *mocks.MockParticipantRepository
	messages     *mocks.MockMessageRepository
	publisher    *mocks.MockPublisher
}

func newMessageFixture(t *testing.T) messageFixture {
	ctrl := gomock.NewController(t)
	f := messageFixture{
		participants: mocks.NewMockParticipantRepository(ctrl),
		messages:     mocks.NewMockMessageRepository(ctrl),
		publisher:    mocks.NewMockPublisher(ctrl),
	}
	f.svc = NewMessageService(f.participants, f.messages, f.publisher, utils.NewValidator(), nil, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestMessageService_Post(t *testing.T) {
	ctx := context.Background()
	input := models.MessageInput{To: "bob", Text: "hi", Type: models.TypePrivateMessage}

	t.Run("stores message with header sender", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t)

		f.participants.EXPECT().FindByName(ctx, "alice").Return(&models.Participant{Name: "alice"}, nil).Times(1)
		f.messages.EXPECT().Insert(ctx, &models.Message{
			From: "alice", To: "bob", Text: "hi", Type: "private_message", Time: "14:03:09",
		}).Return(nil).Times(1)
		f.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, evt events.Event) error {
			req.Equal(events.TypeMessagePosted, evt.Type)
			return nil
		}).Times(1)

		spoofed := input
		spoofed.From = "mallory"
		req.NoError(f.svc.Post(ctx, "alice", spoofed))
	})

	t.Run("unknown sender is unprocessable and inserts nothing", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t)

		f.participants.EXPECT().FindByName(ctx, "ghost").Return(nil, repository.ErrParticipantNotFound).Times(1)

		err := f.svc.Post(ctx, "ghost", input)
		req.ErrorIs(err, ErrUnknownSender)
		req.ErrorIs(err, ErrUnprocessable)
	})

	t.Run("validation reports every field", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t)

		err := f.svc.Post(ctx, "", models.MessageInput{Type: "status"})
		var ve *utils.ValidationError
		req.ErrorAs(err, &ve)
		req.Len(ve.Details, 4)
	})

	t.Run("store failure is surfaced", func(t *testing.T) {
		req := require.New(t)
		f := newMessageFixture(t)
		boom := errors.New("write failed")

		f.participants.EXPECT().FindByName(ctx, "alice").Return(&models.Participant{Name: "alice"}, nil).Times(1)
		f.messages.EXPECT().Insert(ctx, gomock.Any()).Return(boom).Times(1)

		req.ErrorIs(f.svc.Post(ctx, "alice", input), boom)
	})
}

func TestParseLimit(t *testing.T) {
	req := require.New(t)

	n, err := ParseLimit("")
	req.NoError(err)
	req.Zero(n)

	n, err = ParseLimit("2")
	req.NoError(err)
	req.Equal(int64(2), n)

	for _, raw := range []string{"0", "-3", "abc", "1.5"} {
		_, err := ParseLimit(raw)
		req.ErrorIs(err, ErrInvalidLimit, raw)
		req.ErrorIs(err, ErrUnprocessable, raw)
	}
}

func TestMessageService_List(t *testing.T) {
	req := require.New(t)
	f := newMessageFixture(t)
	ctx := context.Background()
	want := []models.Message{{From: "a", To: "Todos", Type: models.TypeStatus}}

	f.messages.EXPECT().ListVisible(ctx, "bob", int64(2)).Return(want, nil).Times(1)

	got, err := f.svc.List(ctx, "bob", 2)
	req.NoError(err)
	req.Equal(want, got)
}
