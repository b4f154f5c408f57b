package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/mockmate-ai/mockmate/internal/feedback"
	"github.com/mockmate-ai/mockmate/internal/models"
	pgrepo "github.com/mockmate-ai/mockmate/internal/repositories/postgres"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

type FeedbackService interface {
	// GenerateForSession evaluates a finished transcript, persists the
	// record, and invalidates the user's cached report list. An empty
	// transcript returns (nil, nil) with no side effects. resumeAnalysis
	// overrides the stored analysis when non-empty.
	GenerateForSession(ctx context.Context, userID, sessionID string, transcript []models.TranscriptEntry, resumeAnalysis json.RawMessage) (*feedback.Result, error)
}

type feedbackService struct {
	pipeline *feedback.Pipeline
	resumes  pgrepo.ResumeRepository
	reports  ReportService
	log      *logrus.Logger
}

func NewFeedbackService(pipeline *feedback.Pipeline, resumes pgrepo.ResumeRepository, reports ReportService, log *logrus.Logger) FeedbackService {
	if log == nil {
		log = logrus.New()
	}
	return &feedbackService{pipeline: pipeline, resumes: resumes, reports: reports, log: log}
}

func (s *feedbackService) GenerateForSession(ctx context.Context, userID, sessionID string, transcript []models.TranscriptEntry, resumeAnalysis json.RawMessage) (*feedback.Result, error) {
	const op = "FeedbackService.GenerateForSession"

	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}
	if len(transcript) == 0 {
		return nil, nil
	}

	// The evaluation prompt references the resume when one was analyzed;
	// a missing analysis is not an error. A caller-supplied analysis wins
	// over the stored one.
	resumeJSON := resumeAnalysis
	if len(resumeJSON) == 0 {
		analysis, err := s.resumes.AnalysisByUser(ctx, userID)
		switch {
		case err == nil && len(analysis.Raw) > 0:
			resumeJSON = json.RawMessage(analysis.Raw)
		case err != nil && !errors.Is(err, utils.ErrNotFound):
			s.log.WithError(err).WithField("user_id", userID).Warn("resume analysis lookup failed, evaluating without it")
		}
	}

	res, err := s.pipeline.Generate(ctx, userID, sessionID, transcript, resumeJSON)
	if err != nil {
		return nil, err
	}

	if res != nil && res.Saved && s.reports != nil {
		if err := s.reports.Invalidate(ctx, userID); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate report cache")
		}
	}
	return res, nil
}
