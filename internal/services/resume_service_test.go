package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

type fakeResumeRepo struct {
	files    []models.ResumeFile
	analysis *models.ResumeAnalysis
}

func (f *fakeResumeRepo) InsertFile(ctx context.Context, file *models.ResumeFile) error {
	f.files = append(f.files, *file)
	return nil
}

func (f *fakeResumeRepo) LatestFileByUser(ctx context.Context, userID string) (*models.ResumeFile, error) {
	for i := len(f.files) - 1; i >= 0; i-- {
		if f.files[i].UserID == userID {
			return &f.files[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeResumeRepo) UpsertAnalysis(ctx context.Context, a *models.ResumeAnalysis) error {
	f.analysis = a
	return nil
}

func (f *fakeResumeRepo) AnalysisByUser(ctx context.Context, userID string) (*models.ResumeAnalysis, error) {
	if f.analysis == nil || f.analysis.UserID != userID {
		return nil, utils.ErrNotFound
	}
	return f.analysis, nil
}

func (f *fakeResumeRepo) HasAnalysis(ctx context.Context, userID string) (bool, error) {
	return f.analysis != nil && f.analysis.UserID == userID, nil
}

type fakeUploader struct {
	objects map[string][]byte
}

func (f *fakeUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[objectName] = b
	return objectName, nil
}

type fakeSigner struct{}

func (fakeSigner) SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + objectName, nil
}

type scriptedLLM struct{ text string }

func (s *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return s.text, nil
}

func (s *scriptedLLM) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string)
	errs := make(chan error)
	close(out)
	close(errs)
	return out, errs
}

func (s *scriptedLLM) Close() error { return nil }

func TestResumeUploadAndLatest(t *testing.T) {
	repo := &fakeResumeRepo{}
	up := &fakeUploader{}
	svc := NewResumeService(repo, up, fakeSigner{}, &scriptedLLM{}, nil)

	f, err := svc.Upload(context.Background(), "u1", "cv.pdf", "application/pdf", strings.NewReader("%PDF-1.4 content"))
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", f.FileName)
	assert.Equal(t, len("%PDF-1.4 content"), f.FileSize)
	require.Len(t, up.objects, 1)

	got, url, err := svc.Latest(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Contains(t, url, "https://signed.example/")
}

func TestResumeUploadRejectsEmpty(t *testing.T) {
	svc := NewResumeService(&fakeResumeRepo{}, &fakeUploader{}, fakeSigner{}, &scriptedLLM{}, nil)

	_, err := svc.Upload(context.Background(), "u1", "cv.pdf", "application/pdf", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestResumeAnalyzeParsesFencedJSON(t *testing.T) {
	repo := &fakeResumeRepo{}
	llm := &scriptedLLM{text: "```json\n{\"full_name\":\"Ada\",\"skills\":[\"testing\"],\"tech_stack\":[\"Go\",\"Redis\"],\"weak_areas\":[\"CSS\"],\"experience_years\":4,\"education\":\"BSc\",\"seniority\":\"intermediate\"}\n```"}
	svc := NewResumeService(repo, &fakeUploader{}, fakeSigner{}, llm, nil)

	a, err := svc.Analyze(context.Background(), "u1", "my resume text")
	require.NoError(t, err)

	assert.Equal(t, "Ada", a.FullName)
	assert.Equal(t, []string{"Go", "Redis"}, []string(a.TechStack))
	assert.Equal(t, "intermediate", a.Seniority)
	assert.Equal(t, 4.0, a.ExperienceYears)
	require.NotNil(t, repo.analysis, "analysis persisted")
	assert.NotEmpty(t, repo.analysis.Raw)
}

func TestResumeAnalyzeRejectsUnparseableOutput(t *testing.T) {
	llm := &scriptedLLM{text: "I cannot produce JSON today."}
	svc := NewResumeService(&fakeResumeRepo{}, &fakeUploader{}, fakeSigner{}, llm, nil)

	_, err := svc.Analyze(context.Background(), "u1", "resume")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}

func TestResumeLatestWithoutUpload(t *testing.T) {
	svc := NewResumeService(&fakeResumeRepo{}, &fakeUploader{}, fakeSigner{}, &scriptedLLM{}, nil)

	_, _, err := svc.Latest(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestResumeHasAnalysis(t *testing.T) {
	repo := &fakeResumeRepo{}
	llm := &scriptedLLM{text: `{"full_name":"Ada","seniority":"advanced"}`}
	svc := NewResumeService(repo, &fakeUploader{}, fakeSigner{}, llm, nil)

	ok, err := svc.HasAnalysis(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Analyze(context.Background(), "u1", "resume")
	require.NoError(t, err)

	ok, err = svc.HasAnalysis(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.HasAnalysis(context.Background(), "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
