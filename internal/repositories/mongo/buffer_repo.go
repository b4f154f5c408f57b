package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mockmate-ai/mockmate/internal/models"
)

type BufferRepository interface {
	InsertChunk(ctx context.Context, b *models.UtteranceBuffer) error
	UpdateSTT(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string) error
	UpdateReply(ctx context.Context, sessionID string, chunkIndex int64, reply string, status string, processingMS int64) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.UtteranceBuffer, error)
}

type bufferRepo struct {
	col *mongo.Collection
}

func NewBufferRepo(db *mongo.Database) BufferRepository {
	return &bufferRepo{col: db.Collection("utterance_buffer")}
}

func (r *bufferRepo) InsertChunk(ctx context.Context, b *models.UtteranceBuffer) error {
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, b)
	return err
}

func (r *bufferRepo) UpdateSTT(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "chunk_index": chunkIndex},
		bson.M{"$set": bson.M{
			"transcript_text": text,
			"stt_confidence":  confidence,
			"stt_status":      status,
		}},
	)
	return err
}

func (r *bufferRepo) UpdateReply(ctx context.Context, sessionID string, chunkIndex int64, reply string, status string, processingMS int64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "chunk_index": chunkIndex},
		bson.M{"$set": bson.M{
			"reply_text":         reply,
			"reply_status":       status,
			"processing_time_ms": processingMS,
		}},
	)
	return err
}

func (r *bufferRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.UtteranceBuffer, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().
			SetSort(bson.D{{Key: "chunk_index", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.UtteranceBuffer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
