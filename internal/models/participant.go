package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Participant is a named member currently present in the room.
type Participant struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	LastStatus int64              `bson:"lastStatus" json:"lastStatus"` // epoch millis
}

// ParticipantInput is the registration payload.
type ParticipantInput struct {
	Name string `json:"name" validate:"required,notblank"`
}
