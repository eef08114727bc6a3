package models

import (
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// BroadcastTarget addresses every participant.
	BroadcastTarget = "Todos"

	TypeMessage        = "message"
	TypePrivateMessage = "private_message"
	TypeStatus         = "status"

	JoinText  = "entra na sala..."
	LeaveText = "sai da sala..."
)

type Message struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	From string             `bson:"from" json:"from"`
	To   string             `bson:"to" json:"to"`
	Text string             `bson:"text" json:"text"`
	Type string             `bson:"type" json:"type"`
	Time string             `bson:"time" json:"time"` // HH:mm:ss
}

// MessageInput is the body of POST /messages. From is injected from the User header.
type MessageInput struct {
	From string `json:"from" validate:"required,notblank"`
	To   string `json:"to" validate:"required,notblank"`
	Text string `json:"text" validate:"required,notblank"`
	Type string `json:"type" validate:"required,oneof=message private_message"`
}

// StatusMessage builds a system announcement for name.
func StatusMessage(name, text, clock string) *Message {
	return &Message{
		From: name,
		To:   BroadcastTarget,
		Text: text,
		Type: TypeStatus,
		Time: clock,
	}
}

// VisibleTo reports whether viewer may read m. Messages typed "message" are
// public regardless of addressee.
func (m Message) VisibleTo(viewer string) bool {
	return m.From == viewer ||
		m.To == viewer ||
		m.To == BroadcastTarget ||
		m.Type == TypeMessage
}

// FilterVisible keeps the messages viewer may read, preserving order.
func FilterVisible(msgs []Message, viewer string) []Message {
	return lo.Filter(msgs, func(m Message, _ int) bool {
		return m.VisibleTo(viewer)
	})
}
