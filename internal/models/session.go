package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InterviewSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`       // uuid from the hosted auth provider

	Status   string          `bson:"status" json:"status"` // active|ended
	Metadata SessionMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	DurationSeconds int64 `bson:"duration_seconds" json:"duration_seconds"`
}

type SessionMetadata struct {
	InterviewType string `bson:"interview_type,omitempty" json:"interview_type,omitempty"` // technical|behavioral|system-design
	Position      string `bson:"position,omitempty" json:"position,omitempty"`
	QuestionCount int    `bson:"question_count,omitempty" json:"question_count,omitempty"`
}
