package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/fathima-sithara/chatroom-service/internal/models"
	"github.com/stretchr/testify/require"
)

func TestValidator_Participant(t *testing.T) {
	v := NewValidator()

	t.Run("valid name", func(t *testing.T) {
		require.NoError(t, v.Struct(models.ParticipantInput{Name: "alice"}))
	})

	t.Run("missing name", func(t *testing.T) {
		req := require.New(t)
		err := v.Struct(models.ParticipantInput{})
		var ve *ValidationError
		req.True(errors.As(err, &ve))
		req.Equal([]string{`"name" is required`}, ve.Details)
	})

	t.Run("blank name", func(t *testing.T) {
		req := require.New(t)
		err := v.Struct(models.ParticipantInput{Name: "   "})
		var ve *ValidationError
		req.True(errors.As(err, &ve))
		req.Equal([]string{`"name" is not allowed to be empty`}, ve.Details)
	})
}

func TestValidator_Message_ReportsEveryViolation(t *testing.T) {
	req := require.New(t)
	v := NewValidator()

	err := v.Struct(models.MessageInput{Type: "status"})
	var ve *ValidationError
	req.True(errors.As(err, &ve))
	req.Equal([]string{
		`"from" is required`,
		`"to" is required`,
		`"text" is required`,
		`"type" must be one of [message, private_message]`,
	}, ve.Details)

	req.NoError(v.Struct(models.MessageInput{From: "a", To: "Todos", Text: "hi", Type: models.TypeMessage}))
	req.NoError(v.Struct(models.MessageInput{From: "a", To: "b", Text: "hi", Type: models.TypePrivateMessage}))
}

func TestClock(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 5, 7, 0, time.Local)
	require.Equal(t, "09:05:07", Clock(ts))
	require.Equal(t, ts.UnixMilli(), NowMillis(ts))
}
