package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

type fakeFeedbackRepo struct {
	rows     []models.FeedbackRecord
	listErr  error
	listHits int
}

func (f *fakeFeedbackRepo) Insert(ctx context.Context, rec *models.FeedbackRecord) error {
	f.rows = append(f.rows, *rec)
	return nil
}

func (f *fakeFeedbackRepo) ListByUser(ctx context.Context, userID string) ([]models.FeedbackRecord, error) {
	f.listHits++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeFeedbackRepo) GetByID(ctx context.Context, userID, id string) (*models.FeedbackRecord, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			return &f.rows[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memoryCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestReportListCachesSecondRead(t *testing.T) {
	repo := &fakeFeedbackRepo{rows: []models.FeedbackRecord{
		{
			ID:             "f1",
			UserID:         "u1",
			SessionID:      "s1",
			Feedback:       "good",
			Transcript:     datatypes.JSON(`[{"role":"candidate","content":"hi"}]`),
			ResumeAnalysis: datatypes.JSON(`{"tech_stack":["Go"]}`),
			CreatedAt:      time.Unix(1700000000, 0).UTC(),
		},
	}}
	svc := NewReportService(repo, newMemoryCache())

	first, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listHits, "second read served from cache")
}

func TestReportInvalidateForcesReload(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := NewReportService(repo, newMemoryCache())

	_, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(context.Background(), "u1"))

	_, err = svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listHits)
}

func TestReportListWithoutCache(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	svc := NewReportService(repo, nil)

	_, err := svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listHits)
}

func TestReportGetByIDOwnership(t *testing.T) {
	repo := &fakeFeedbackRepo{rows: []models.FeedbackRecord{
		{ID: "f1", UserID: "u1"},
	}}
	svc := NewReportService(repo, nil)

	rec, err := svc.GetByID(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", rec.ID)

	_, err = svc.GetByID(context.Background(), "u2", "f1")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound), "other users cannot see the record")
}

func TestReportListRepoFailure(t *testing.T) {
	repo := &fakeFeedbackRepo{listErr: errors.New("db down")}
	svc := NewReportService(repo, newMemoryCache())

	_, err := svc.ListByUser(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
}
