package interview

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// FeedbackTrigger receives the sealed transcript exactly once per
// session. It runs on its own goroutine with a context detached from
// the caller, so navigation away cannot cancel persistence.
type FeedbackTrigger func(ctx context.Context, transcript []models.TranscriptEntry)

// LiveSink receives interviewer utterances that pass the
// displayable-question heuristic, for live UI display only.
type LiveSink func(entry models.TranscriptEntry)

// Session is the state machine of one interview attempt:
// idle -> connecting -> active -> ended. Ended is terminal; a new
// Session must be constructed for the next attempt.
type Session struct {
	ID     string
	UserID string

	media      *MediaController
	transcript *Accumulator
	onFeedback FeedbackTrigger
	onLive     LiveSink
	log        *logrus.Entry

	mu        sync.Mutex
	state     State
	startedAt *time.Time
	endedAt   *time.Time
	speaking  bool
	lastErr   error

	// Guards exactly-once feedback generation. Checked with CAS because
	// an explicit end and a platform-initiated end can race.
	feedbackTriggered atomic.Bool
}

func NewSession(id, userID string, media *MediaController, onFeedback FeedbackTrigger, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		ID:         id,
		UserID:     userID,
		media:      media,
		transcript: NewAccumulator(),
		onFeedback: onFeedback,
		log:        log.WithField("session_id", id),
	}
}

// SetLiveSink installs the live display callback. Must be called before
// Start.
func (s *Session) SetLiveSink(sink LiveSink) { s.onLive = sink }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) StartedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

func (s *Session) EndedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// Err returns the last platform error surfaced to the caller.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) Media() *MediaController { return s.media }

// TranscriptLen is the number of recorded utterances so far.
func (s *Session) TranscriptLen() int { return s.transcript.Len() }

// Transcript returns a copy of the recorded utterances.
func (s *Session) Transcript() []models.TranscriptEntry { return s.transcript.Snapshot() }

// Start moves Idle to Connecting. A start while a connect is already in
// flight or the session is active is an idempotent no-op: no second
// concurrent session is ever spawned.
func (s *Session) Start() error {
	const op = "Session.Start"

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle:
		s.state = StateConnecting
		s.lastErr = nil
		return nil
	case StateConnecting, StateActive:
		return nil
	default:
		return utils.E(utils.CodeFailedPrecondition, op, "session already ended", nil)
	}
}

// HandleEvent feeds one platform event into the state machine.
func (s *Session) HandleEvent(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventSessionStarted:
		s.onEstablished(ctx)
	case EventSessionEnded:
		s.end(ctx)
	case EventSpeechStarted:
		s.setSpeaking(true)
	case EventSpeechEnded:
		s.setSpeaking(false)
	case EventTranscript:
		s.onTranscript(ev)
	case EventError:
		s.onError(ctx, ev.Err)
	}
}

// End is the explicit user "end interview" action. Idempotent; a
// concurrent platform-initiated end resolves to a single cleanup and a
// single feedback trigger.
func (s *Session) End(ctx context.Context) {
	s.end(ctx)
}

func (s *Session) onEstablished(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return
	}
	s.state = StateActive
	now := time.Now().UTC()
	s.startedAt = &now
	s.transcript.Reset()
	s.feedbackTriggered.Store(false)
	s.mu.Unlock()

	// Device denial is non-fatal; the interview proceeds without preview.
	if err := s.media.Acquire(ctx); err != nil {
		s.log.WithError(err).Warn("media acquire rejected")
	}
}

func (s *Session) onTranscript(ev Event) {
	s.mu.Lock()
	active := s.state == StateActive
	s.mu.Unlock()
	if !active {
		return
	}

	if !s.transcript.Append(ev.Role, ev.Text) {
		return
	}
	if s.onLive != nil && ev.Role == models.RoleInterviewer && IsDisplayableQuestion(ev.Text) {
		s.onLive(models.TranscriptEntry{Role: ev.Role, Content: ev.Text, Timestamp: time.Now().UTC()})
	}
}

func (s *Session) onError(ctx context.Context, cause error) {
	s.mu.Lock()
	switch s.state {
	case StateConnecting:
		// No transcript exists yet: back to idle, no feedback.
		s.state = StateIdle
		s.lastErr = cause
		s.mu.Unlock()
		s.media.Release()
		s.log.WithError(cause).Error("voice platform failed to establish session")
		return
	case StateActive:
		s.lastErr = cause
		s.mu.Unlock()
		s.log.WithError(cause).Error("voice platform error mid-session, ending")
		s.end(ctx)
		return
	default:
		s.mu.Unlock()
	}
}

func (s *Session) setSpeaking(on bool) {
	s.mu.Lock()
	s.speaking = on
	s.mu.Unlock()
}

// Speaking reports whether the interviewer is currently talking.
func (s *Session) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// end performs the single end-of-session sequence. Entering Ended a
// second time is a no-op. An explicit end while still Connecting aborts
// back to Idle without feedback.
func (s *Session) end(ctx context.Context) {
	s.mu.Lock()
	switch s.state {
	case StateEnded:
		s.mu.Unlock()
		return
	case StateConnecting:
		s.state = StateIdle
		s.mu.Unlock()
		s.media.Release()
		return
	case StateIdle:
		s.mu.Unlock()
		return
	}
	s.state = StateEnded
	now := time.Now().UTC()
	s.endedAt = &now
	s.mu.Unlock()

	// Cleanup is unconditional and never waits on feedback.
	s.media.Release()
	snapshot := s.transcript.Seal()

	if len(snapshot) == 0 {
		return
	}
	if !s.feedbackTriggered.CompareAndSwap(false, true) {
		return
	}
	if s.onFeedback == nil {
		return
	}

	// Detach from the caller: leaving the page or closing the socket
	// must not cancel generation or persistence.
	go s.onFeedback(context.WithoutCancel(ctx), snapshot)
}
