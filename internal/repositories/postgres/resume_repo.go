package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

type ResumeRepository interface {
	InsertFile(ctx context.Context, f *models.ResumeFile) error
	LatestFileByUser(ctx context.Context, userID string) (*models.ResumeFile, error)
	UpsertAnalysis(ctx context.Context, a *models.ResumeAnalysis) error
	AnalysisByUser(ctx context.Context, userID string) (*models.ResumeAnalysis, error)
	HasAnalysis(ctx context.Context, userID string) (bool, error)
}

type resumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) InsertFile(ctx context.Context, f *models.ResumeFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *resumeRepo) LatestFileByUser(ctx context.Context, userID string) (*models.ResumeFile, error) {
	var row models.ResumeFile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("upload_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *resumeRepo) UpsertAnalysis(ctx context.Context, a *models.ResumeAnalysis) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *resumeRepo) AnalysisByUser(ctx context.Context, userID string) (*models.ResumeAnalysis, error) {
	var row models.ResumeAnalysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *resumeRepo) HasAnalysis(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}
