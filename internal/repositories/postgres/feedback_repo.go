package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

// ErrDuplicateSession is returned when a feedback record for the same
// session id already exists. The unique index makes exactly-once hold
// even across multiple server instances.
var ErrDuplicateSession = errors.New("feedback already recorded for this session")

type FeedbackRepository interface {
	Insert(ctx context.Context, rec *models.FeedbackRecord) error
	ListByUser(ctx context.Context, userID string) ([]models.FeedbackRecord, error)
	GetByID(ctx context.Context, userID, id string) (*models.FeedbackRecord, error)
}

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Insert(ctx context.Context, rec *models.FeedbackRecord) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSession
	}
	return err
}

func (r *feedbackRepo) ListByUser(ctx context.Context, userID string) ([]models.FeedbackRecord, error) {
	var rows []models.FeedbackRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *feedbackRepo) GetByID(ctx context.Context, userID, id string) (*models.FeedbackRecord, error) {
	var row models.FeedbackRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
