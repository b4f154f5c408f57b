package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/providers/llm"
	pgrepo "github.com/mockmate-ai/mockmate/internal/repositories/postgres"
	"github.com/mockmate-ai/mockmate/internal/storage"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

const (
	maxResumeBytes = 5 << 20
	signedURLTTL   = 15 * time.Minute
)

type ResumeService interface {
	Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (*models.ResumeFile, error)
	// Analyze runs the resume text through the LLM and stores the
	// structured result, replacing any previous analysis for the user.
	Analyze(ctx context.Context, userID, resumeText string) (*models.ResumeAnalysis, error)
	Latest(ctx context.Context, userID string) (*models.ResumeFile, string, error)
	Analysis(ctx context.Context, userID string) (*models.ResumeAnalysis, error)
	HasAnalysis(ctx context.Context, userID string) (bool, error)
}

type resumeService struct {
	resumes  pgrepo.ResumeRepository
	uploader storage.Uploader
	signer   storage.Signer
	llm      llm.Provider
	log      *logrus.Logger
}

func NewResumeService(resumes pgrepo.ResumeRepository, uploader storage.Uploader, signer storage.Signer, provider llm.Provider, log *logrus.Logger) ResumeService {
	if log == nil {
		log = logrus.New()
	}
	return &resumeService{resumes: resumes, uploader: uploader, signer: signer, llm: provider, log: log}
}

func (s *resumeService) Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (*models.ResumeFile, error) {
	const op = "ResumeService.Upload"

	if userID == "" || fileName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and file_name are required", nil)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	id := uuid.NewString()
	objectName := "resumes/" + userID + "/" + id + "/" + fileName

	limited := io.LimitReader(r, maxResumeBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read upload", err)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "empty file", nil)
	}
	if len(data) > maxResumeBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file exceeds 5MB limit", nil)
	}

	storedPath, err := s.uploader.Upload(ctx, objectName, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to store file", err)
	}

	f := &models.ResumeFile{
		ID:       id,
		UserID:   userID,
		FileName: fileName,
		FilePath: storedPath,
		FileSize: len(data),
		MimeType: mimeType,
		UploadAt: time.Now().UTC(),
	}
	if err := s.resumes.InsertFile(ctx, f); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record file", err)
	}
	return f, nil
}

const analyzeTemplate = `Analyze the following resume and return ONLY a JSON object with these fields:
{
  "full_name": string,
  "skills": [string],
  "tech_stack": [string],
  "weak_areas": [string],
  "experience_years": number,
  "education": string,
  "seniority": "beginner" | "intermediate" | "advanced"
}

tech_stack lists concrete technologies the candidate has worked with.
weak_areas lists technologies mentioned only briefly or without depth.

Resume:
%s`

func (s *resumeService) Analyze(ctx context.Context, userID, resumeText string) (*models.ResumeAnalysis, error) {
	const op = "ResumeService.Analyze"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume_text is required", nil)
	}

	raw, err := s.llm.Complete(ctx, strings.Replace(analyzeTemplate, "%s", resumeText, 1))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to analyze resume", err)
	}

	cleaned := stripCodeFence(raw)

	var parsed struct {
		FullName        string   `json:"full_name"`
		Skills          []string `json:"skills"`
		TechStack       []string `json:"tech_stack"`
		WeakAreas       []string `json:"weak_areas"`
		ExperienceYears float64  `json:"experience_years"`
		Education       string   `json:"education"`
		Seniority       string   `json:"seniority"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("resume analysis returned non-JSON output")
		return nil, utils.E(utils.CodeUnavailable, op, "analysis output was not parseable", err)
	}

	var resumeID string
	if f, ferr := s.resumes.LatestFileByUser(ctx, userID); ferr == nil {
		resumeID = f.ID
	} else if !errors.Is(ferr, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up resume file", ferr)
	}

	a := &models.ResumeAnalysis{
		UserID:          userID,
		ResumeID:        resumeID,
		FullName:        parsed.FullName,
		Skills:          parsed.Skills,
		TechStack:       parsed.TechStack,
		WeakAreas:       parsed.WeakAreas,
		ExperienceYears: parsed.ExperienceYears,
		Education:       parsed.Education,
		Seniority:       parsed.Seniority,
		Raw:             datatypes.JSON(cleaned),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.resumes.UpsertAnalysis(ctx, a); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save analysis", err)
	}
	return a, nil
}

func (s *resumeService) Latest(ctx context.Context, userID string) (*models.ResumeFile, string, error) {
	const op = "ResumeService.Latest"

	if userID == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	f, err := s.resumes.LatestFileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, "", utils.E(utils.CodeNotFound, op, "no resume uploaded", err)
		}
		return nil, "", utils.E(utils.CodeInternal, op, "failed to look up resume file", err)
	}

	url := ""
	if s.signer != nil {
		url, err = s.signer.SignedGetURL(ctx, f.FilePath, signedURLTTL)
		if err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("failed to sign resume url")
			url = ""
		}
	}
	return f, url, nil
}

func (s *resumeService) Analysis(ctx context.Context, userID string) (*models.ResumeAnalysis, error) {
	const op = "ResumeService.Analysis"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	a, err := s.resumes.AnalysisByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not analyzed yet", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get analysis", err)
	}
	return a, nil
}

func (s *resumeService) HasAnalysis(ctx context.Context, userID string) (bool, error) {
	const op = "ResumeService.HasAnalysis"

	if userID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	ok, err := s.resumes.HasAnalysis(ctx, userID)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to check analysis", err)
	}
	return ok, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block when the
// model wraps its answer in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
