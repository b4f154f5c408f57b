package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mockmate-ai/mockmate/internal/interview"
	"github.com/mockmate-ai/mockmate/internal/models"
	mongorepo "github.com/mockmate-ai/mockmate/internal/repositories/mongo"
	"github.com/mockmate-ai/mockmate/internal/utils"
	"github.com/mockmate-ai/mockmate/internal/voice"
)

// SessionRuntime is the in-process side of one live interview: the
// state machine, the voice platform handle, and a live channel carrying
// displayable interviewer questions to the connected client.
type SessionRuntime struct {
	Session *interview.Session
	Handle  voice.SessionHandle
	Live    chan models.TranscriptEntry
}

// ActiveSessionInfo is the admin view of a running session.
type ActiveSessionInfo struct {
	SessionID     string     `json:"session_id"`
	UserID        string     `json:"user_id"`
	State         string     `json:"state"`
	TranscriptLen int        `json:"transcript_len"`
	Speaking      bool       `json:"speaking"`
	VideoEnabled  bool       `json:"video_enabled"`
	AudioEnabled  bool       `json:"audio_enabled"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
}

type InterviewService interface {
	Start(ctx context.Context, userID string, md models.SessionMetadata) (*models.InterviewSession, error)
	Get(ctx context.Context, userID, sessionID string) (*models.InterviewSession, error)
	End(ctx context.Context, userID, sessionID string) (*models.InterviewSession, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.InterviewSession, error)

	// Runtime returns the live runtime when this instance hosts the
	// session. WS attachment and media toggles go through it.
	Runtime(sessionID string) (*SessionRuntime, bool)
	Active() []ActiveSessionInfo
}

type interviewService struct {
	sessions mongorepo.SessionRepository
	resumes  ResumeService
	feedback FeedbackService
	platform voice.Platform
	gateway  *voice.Gateway
	log      *logrus.Logger

	// base context for runtimes; they must outlive the HTTP request
	// that started them.
	runCtx context.Context

	mu       sync.RWMutex
	runtimes map[string]*SessionRuntime
}

func NewInterviewService(runCtx context.Context, sessions mongorepo.SessionRepository, resumes ResumeService, fb FeedbackService, gateway *voice.Gateway, log *logrus.Logger) InterviewService {
	if runCtx == nil {
		runCtx = context.Background()
	}
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{
		sessions: sessions,
		resumes:  resumes,
		feedback: fb,
		platform: gateway,
		gateway:  gateway,
		log:      log,
		runCtx:   runCtx,
		runtimes: make(map[string]*SessionRuntime),
	}
}

func (s *interviewService) Start(ctx context.Context, userID string, md models.SessionMetadata) (*models.InterviewSession, error) {
	const op = "InterviewService.Start"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	var analysis *models.ResumeAnalysis
	if a, err := s.resumes.Analysis(ctx, userID); err == nil {
		analysis = a
	} else if !utils.IsCode(err, utils.CodeNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	record := &models.InterviewSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Status:    "active",
		Metadata:  md,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session record", err)
	}

	media := interview.NewMediaController(
		s.gateway.DeviceSource(record.SessionID),
		logrus.NewEntry(s.log),
	)

	trigger := func(fctx context.Context, transcript []models.TranscriptEntry) {
		if _, err := s.feedback.GenerateForSession(fctx, userID, record.SessionID, transcript, nil); err != nil {
			s.log.WithError(err).WithField("session_id", record.SessionID).Error("feedback generation failed")
		}
	}

	sess := interview.NewSession(record.SessionID, userID, media, trigger, logrus.NewEntry(s.log))
	rt := &SessionRuntime{
		Session: sess,
		Live:    make(chan models.TranscriptEntry, 16),
	}
	sess.SetLiveSink(func(entry models.TranscriptEntry) {
		select {
		case rt.Live <- entry:
		default: // no client attached; live display is best-effort
		}
	})

	if err := sess.Start(); err != nil {
		return nil, err
	}

	handle, err := s.platform.StartSession(s.runCtx, record.SessionID, voice.AssistantConfig{
		SystemPrompt: voice.BuildInterviewerPrompt(analysis, md),
		Language:     "en",
	})
	if err != nil {
		sess.HandleEvent(s.runCtx, interview.Event{Type: interview.EventError, Err: err})
		_ = s.sessions.SetStatus(ctx, record.SessionID, "failed")
		return nil, utils.E(utils.CodeUnavailable, op, "voice platform unavailable", err)
	}
	rt.Handle = handle

	s.mu.Lock()
	s.runtimes[record.SessionID] = rt
	s.mu.Unlock()

	go s.pump(record.SessionID, rt)

	return record, nil
}

// pump feeds platform events into the state machine until the event
// channel closes, then finalizes the durable record and drops the
// runtime.
func (s *interviewService) pump(sessionID string, rt *SessionRuntime) {
	for ev := range rt.Handle.Events() {
		rt.Session.HandleEvent(s.runCtx, ev)
	}
	rt.Session.End(s.runCtx)
	close(rt.Live)

	s.mu.Lock()
	delete(s.runtimes, sessionID)
	s.mu.Unlock()

	s.finalizeRecord(sessionID, rt.Session)
}

func (s *interviewService) finalizeRecord(sessionID string, sess *interview.Session) {
	ctx, cancel := context.WithTimeout(s.runCtx, 10*time.Second)
	defer cancel()

	record, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("failed to load session record for finalize")
		return
	}
	if record.Status == "ended" {
		return
	}

	endedAt := time.Now().UTC()
	if t := sess.EndedAt(); t != nil {
		endedAt = *t
	}
	dur := int64(endedAt.Sub(record.CreatedAt).Seconds())
	if dur < 0 {
		dur = 0
	}
	if err := s.sessions.End(ctx, sessionID, endedAt, dur); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("failed to finalize session record")
	}
}

func (s *interviewService) Get(ctx context.Context, userID, sessionID string) (*models.InterviewSession, error) {
	const op = "InterviewService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	record, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if record.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return record, nil
}

// End is the explicit user action. It asks the platform to stop; the
// event pump then drives cleanup and the single feedback trigger. When
// this instance has no runtime for the session (it already ended, or
// another instance hosts it) only the durable record is closed.
func (s *interviewService) End(ctx context.Context, userID, sessionID string) (*models.InterviewSession, error) {
	const op = "InterviewService.End"

	record, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if rt, ok := s.Runtime(sessionID); ok {
		if err := rt.Handle.Stop(ctx); err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("platform stop failed, ending locally")
			rt.Session.End(ctx)
		}
		record.Status = "ended"
		return record, nil
	}

	if record.Status != "ended" {
		now := time.Now().UTC()
		dur := int64(now.Sub(record.CreatedAt).Seconds())
		if dur < 0 {
			dur = 0
		}
		if err := s.sessions.End(ctx, sessionID, now, dur); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to end session", err)
		}
		record.Status = "ended"
		record.EndedAt = &now
		record.DurationSeconds = dur
	}
	return record, nil
}

func (s *interviewService) ListByUser(ctx context.Context, userID string, limit int64) ([]models.InterviewSession, error) {
	const op = "InterviewService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return out, nil
}

func (s *interviewService) Runtime(sessionID string) (*SessionRuntime, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.runtimes[sessionID]
	return rt, ok
}

func (s *interviewService) Active() []ActiveSessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ActiveSessionInfo, 0, len(s.runtimes))
	for id, rt := range s.runtimes {
		sess := rt.Session
		media := sess.Media()
		out = append(out, ActiveSessionInfo{
			SessionID:     id,
			UserID:        sess.UserID,
			State:         sess.State().String(),
			TranscriptLen: sess.TranscriptLen(),
			Speaking:      sess.Speaking(),
			VideoEnabled:  media.VideoEnabled(),
			AudioEnabled:  media.AudioEnabled(),
			StartedAt:     sess.StartedAt(),
		})
	}
	return out
}
