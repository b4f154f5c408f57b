package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UtteranceBuffer tracks one candidate audio chunk through the voice
// gateway: STT first, then the interviewer reply. Rows expire via the
// TTL index on ExpiresAt.
type UtteranceBuffer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"session_id"`
	ChunkIndex int64              `bson:"chunk_index" json:"chunk_index"`

	AudioURL    *string `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	AudioBase64 *string `bson:"audio_base64,omitempty" json:"audio_base64,omitempty"`

	TranscriptText string  `bson:"transcript_text,omitempty" json:"transcript_text,omitempty"`
	STTStatus      string  `bson:"stt_status" json:"stt_status"` // pending|processing|done|failed
	STTConfidence  float64 `bson:"stt_confidence,omitempty" json:"stt_confidence,omitempty"`

	ReplyStatus string `bson:"reply_status" json:"reply_status"` // pending|processing|done|failed
	ReplyText   string `bson:"reply_text,omitempty" json:"reply_text,omitempty"`

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}
