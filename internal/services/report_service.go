package services

import (
	"context"
	"errors"
	"time"

	"github.com/mockmate-ai/mockmate/internal/cache"
	"github.com/mockmate-ai/mockmate/internal/models"
	pgrepo "github.com/mockmate-ai/mockmate/internal/repositories/postgres"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

const reportListTTL = 5 * time.Minute

type ReportService interface {
	ListByUser(ctx context.Context, userID string) ([]models.FeedbackRecord, error)
	GetByID(ctx context.Context, userID, id string) (*models.FeedbackRecord, error)
	Invalidate(ctx context.Context, userID string) error
}

type reportService struct {
	feedback pgrepo.FeedbackRepository
	cache    cache.Cache
}

func NewReportService(feedback pgrepo.FeedbackRepository, c cache.Cache) ReportService {
	return &reportService{feedback: feedback, cache: c}
}

func reportListKey(userID string) string { return "reports:user:" + userID }

func (s *reportService) ListByUser(ctx context.Context, userID string) ([]models.FeedbackRecord, error) {
	const op = "ReportService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	if s.cache != nil {
		var cached []models.FeedbackRecord
		if hit, err := s.cache.GetJSON(ctx, reportListKey(userID), &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.feedback.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list feedback reports", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, reportListKey(userID), rows, reportListTTL)
	}
	return rows, nil
}

func (s *reportService) GetByID(ctx context.Context, userID, id string) (*models.FeedbackRecord, error) {
	const op = "ReportService.GetByID"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}

	rec, err := s.feedback.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "report not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get report", err)
	}
	return rec, nil
}

func (s *reportService) Invalidate(ctx context.Context, userID string) error {
	if s.cache == nil || userID == "" {
		return nil
	}
	return s.cache.Del(ctx, reportListKey(userID))
}
