package service

import (
	"context"

	"github.com/fathima-sithara/chatroom-service/internal/events"
	"github.com/fathima-sithara/chatroom-service/internal/models"
	"go.uber.org/zap"
)

func publish(ctx context.Context, p events.Publisher, log *zap.Logger, eventType string, msg models.Message) {
	evt := events.New(eventType, msg)
	if err := p.Publish(ctx, evt); err != nil {
		log.Warn("publish event failed",
			zap.String("event_id", evt.ID),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}
