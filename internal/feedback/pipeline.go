package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/providers/llm"
	pgrepo "github.com/mockmate-ai/mockmate/internal/repositories/postgres"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

// DefaultTimeout bounds the generation call; the collaborator's latency
// is unbounded in principle.
const DefaultTimeout = 45 * time.Second

// Result is what the caller gets back. Saved is false when generation
// succeeded but the durable write did not; the feedback text is still
// returned so the user sees something.
type Result struct {
	FeedbackID          string   `json:"feedback_id,omitempty"`
	Feedback            string   `json:"feedback"`
	TranscriptLength    int      `json:"transcript_length"`
	OverallRating       *float64 `json:"overall_rating"`
	TechnicalScore      *float64 `json:"technical_knowledge_score"`
	CommunicationScore  *float64 `json:"communication_score"`
	ProblemSolvingScore *float64 `json:"problem_solving_score"`
	Recommendation      *string  `json:"recommendation"`
	Saved               bool     `json:"saved"`
}

// Pipeline turns a finished transcript into a persisted FeedbackRecord.
// It holds no state between invocations; dedup is the caller's
// exactly-once guard plus the unique session index in the store.
type Pipeline struct {
	llm       llm.Provider
	store     pgrepo.FeedbackRepository
	extractor Extractor
	log       *logrus.Logger
	timeout   time.Duration
}

func NewPipeline(provider llm.Provider, store pgrepo.FeedbackRepository, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{
		llm:       provider,
		store:     store,
		extractor: RegexExtractor{},
		log:       log,
		timeout:   DefaultTimeout,
	}
}

// WithExtractor swaps the parsing strategy.
func (p *Pipeline) WithExtractor(e Extractor) *Pipeline {
	p.extractor = e
	return p
}

// WithTimeout overrides the generation deadline.
func (p *Pipeline) WithTimeout(d time.Duration) *Pipeline {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// Generate makes exactly one generation call and one persistence write.
// An empty transcript is a no-op: nil result, nil error, no side
// effects. Generation failure and persistence failure are independent
// outcomes: the former returns an error, the latter returns the result
// with Saved=false.
func (p *Pipeline) Generate(ctx context.Context, userID, sessionID string, transcript []models.TranscriptEntry, resumeAnalysis json.RawMessage) (*Result, error) {
	const op = "Pipeline.Generate"

	if len(transcript) == 0 {
		return nil, nil
	}

	prompt := BuildEvaluationPrompt(transcript, string(resumeAnalysis))

	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.llm.Complete(genCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, utils.E(utils.CodeTimeout, op, "feedback generation timed out", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "failed to generate feedback", err)
	}

	scores := p.extractor.Extract(text)

	res := &Result{
		Feedback:            text,
		TranscriptLength:    len(transcript),
		OverallRating:       scores.OverallRating,
		TechnicalScore:      scores.TechnicalScore,
		CommunicationScore:  scores.CommunicationScore,
		ProblemSolvingScore: scores.ProblemSolvingScore,
		Recommendation:      scores.Recommendation,
	}

	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		p.log.WithError(err).WithField("session_id", sessionID).Error("failed to encode transcript, feedback not saved")
		return res, nil
	}

	rec := &models.FeedbackRecord{
		ID:                      uuid.NewString(),
		UserID:                  userID,
		SessionID:               sessionID,
		Transcript:              datatypes.JSON(transcriptJSON),
		Feedback:                text,
		ResumeAnalysis:          datatypes.JSON(resumeAnalysis),
		OverallRating:           scores.OverallRating,
		TechnicalKnowledgeScore: scores.TechnicalScore,
		CommunicationScore:      scores.CommunicationScore,
		ProblemSolvingScore:     scores.ProblemSolvingScore,
		Recommendation:          scores.Recommendation,
		CreatedAt:               time.Now().UTC(),
	}

	if err := p.store.Insert(ctx, rec); err != nil {
		// The user still gets the feedback text; the missing record is
		// reported through Saved=false and the log.
		if errors.Is(err, pgrepo.ErrDuplicateSession) {
			p.log.WithField("session_id", sessionID).Warn("feedback already recorded for session, skipping save")
		} else {
			p.log.WithError(err).WithField("session_id", sessionID).Error("failed to save feedback record")
		}
		return res, nil
	}

	res.FeedbackID = rec.ID
	res.Saved = true
	return res, nil
}
