package services

import (
	"context"

	"github.com/mockmate-ai/mockmate/internal/models"
	mongorepo "github.com/mockmate-ai/mockmate/internal/repositories/mongo"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

// BufferService reads the per-chunk processing trail the voice workers
// leave in Mongo. Writes go through the voice gateway.
type BufferService interface {
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.UtteranceBuffer, error)
}

type bufferService struct {
	buffers mongorepo.BufferRepository
}

func NewBufferService(buffers mongorepo.BufferRepository) BufferService {
	return &bufferService{buffers: buffers}
}

func (s *bufferService) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.UtteranceBuffer, error) {
	const op = "BufferService.ListBySession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.buffers.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list utterance buffer", err)
	}
	return out, nil
}
