package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/mockmate-ai/mockmate/internal/feedback"
	"github.com/mockmate-ai/mockmate/internal/models"
)

func interviewTranscript() []models.TranscriptEntry {
	return []models.TranscriptEntry{
		{Role: models.RoleInterviewer, Content: "How does Redis persistence work?", Timestamp: time.Now().UTC()},
		{Role: models.RoleCandidate, Content: "RDB snapshots and AOF logs.", Timestamp: time.Now().UTC()},
	}
}

func TestFeedbackServiceEmptyTranscriptNoOp(t *testing.T) {
	store := &fakeFeedbackRepo{}
	pipeline := feedback.NewPipeline(&scriptedLLM{text: "unused"}, store, nil)
	svc := NewFeedbackService(pipeline, &fakeResumeRepo{}, nil, nil)

	res, err := svc.GenerateForSession(context.Background(), "u1", "s1", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, store.rows)
}

func TestFeedbackServiceSavesAndInvalidatesCache(t *testing.T) {
	store := &fakeFeedbackRepo{}
	c := newMemoryCache()
	reports := NewReportService(store, c)

	// warm the cache
	_, err := reports.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, store.listHits)

	pipeline := feedback.NewPipeline(&scriptedLLM{text: "Overall rating: 7\nRecommendation: Hire"}, store, nil)
	svc := NewFeedbackService(pipeline, &fakeResumeRepo{}, reports, nil)

	res, err := svc.GenerateForSession(context.Background(), "u1", "s1", interviewTranscript(), nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Saved)
	require.Len(t, store.rows, 1)

	// cache was invalidated, next list hits the store again
	_, err = reports.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.listHits)
}

func TestFeedbackServicePassesResumeContext(t *testing.T) {
	store := &fakeFeedbackRepo{}
	resumes := &fakeResumeRepo{analysis: &models.ResumeAnalysis{
		UserID: "u1",
		Raw:    datatypes.JSON(`{"tech_stack":["Go"]}`),
	}}

	pipeline := feedback.NewPipeline(&scriptedLLM{text: "Overall rating: 7"}, store, nil)
	svc := NewFeedbackService(pipeline, resumes, nil, nil)

	res, err := svc.GenerateForSession(context.Background(), "u1", "s1", interviewTranscript(), nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, store.rows, 1)
	assert.JSONEq(t, `{"tech_stack":["Go"]}`, string(store.rows[0].ResumeAnalysis))
}

func TestFeedbackServiceCallerAnalysisOverridesStored(t *testing.T) {
	store := &fakeFeedbackRepo{}
	resumes := &fakeResumeRepo{analysis: &models.ResumeAnalysis{
		UserID: "u1",
		Raw:    datatypes.JSON(`{"tech_stack":["Go"]}`),
	}}

	pipeline := feedback.NewPipeline(&scriptedLLM{text: "Overall rating: 7"}, store, nil)
	svc := NewFeedbackService(pipeline, resumes, nil, nil)

	override := []byte(`{"tech_stack":["Rust"]}`)
	_, err := svc.GenerateForSession(context.Background(), "u1", "s2", interviewTranscript(), override)
	require.NoError(t, err)

	require.Len(t, store.rows, 1)
	assert.JSONEq(t, `{"tech_stack":["Rust"]}`, string(store.rows[0].ResumeAnalysis))
}
