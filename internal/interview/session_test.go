package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

type triggerRecorder struct {
	mu    sync.Mutex
	calls [][]models.TranscriptEntry
	done  chan struct{}
}

func newTriggerRecorder() *triggerRecorder {
	return &triggerRecorder{done: make(chan struct{}, 16)}
}

func (r *triggerRecorder) fn(ctx context.Context, transcript []models.TranscriptEntry) {
	r.mu.Lock()
	r.calls = append(r.calls, transcript)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *triggerRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *triggerRecorder) waitOne(t *testing.T) []models.TranscriptEntry {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("feedback trigger never fired")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func newTestSession(rec *triggerRecorder) *Session {
	var fn FeedbackTrigger
	if rec != nil {
		fn = rec.fn
	}
	return NewSession("sess-1", "user-1", NewMediaController(&fakeSource{dev: &fakeDevice{}}, nil), fn, nil)
}

func activate(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Start())
	s.HandleEvent(context.Background(), Event{Type: EventSessionStarted})
	require.Equal(t, StateActive, s.State())
}

func TestSessionLifecycle(t *testing.T) {
	rec := newTriggerRecorder()
	s := newTestSession(rec)

	assert.Equal(t, StateIdle, s.State())
	require.NoError(t, s.Start())
	assert.Equal(t, StateConnecting, s.State())

	s.HandleEvent(context.Background(), Event{Type: EventSessionStarted})
	assert.Equal(t, StateActive, s.State())
	assert.NotNil(t, s.StartedAt())
	assert.True(t, s.Media().HasDevice())

	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleInterviewer, Text: "What is a mutex?"})
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleCandidate, Text: "A lock around shared state."})

	s.End(context.Background())
	assert.Equal(t, StateEnded, s.State())
	assert.NotNil(t, s.EndedAt())
	assert.False(t, s.Media().HasDevice(), "media released on end")

	got := rec.waitOne(t)
	require.Len(t, got, 2)
	assert.Equal(t, "What is a mutex?", got[0].Content)
}

func TestSessionStartIsIdempotentWhileRunning(t *testing.T) {
	s := newTestSession(nil)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start(), "second start while connecting is a no-op")
	assert.Equal(t, StateConnecting, s.State())

	s.HandleEvent(context.Background(), Event{Type: EventSessionStarted})
	require.NoError(t, s.Start(), "start while active is a no-op")
	assert.Equal(t, StateActive, s.State())
}

func TestSessionStartAfterEndedFails(t *testing.T) {
	s := newTestSession(nil)
	activate(t, s)
	s.End(context.Background())

	err := s.Start()
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeFailedPrecondition))
}

func TestSessionTranscriptOnlyWhileActive(t *testing.T) {
	s := newTestSession(nil)

	// not started yet: dropped
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleCandidate, Text: "too early"})
	assert.Equal(t, 0, s.TranscriptLen())

	activate(t, s)
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleCandidate, Text: "counts"})
	assert.Equal(t, 1, s.TranscriptLen())

	s.End(context.Background())
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleCandidate, Text: "too late"})
	assert.Equal(t, 1, s.TranscriptLen())
}

func TestSessionLiveSinkFiltersQuestions(t *testing.T) {
	s := newTestSession(nil)

	var mu sync.Mutex
	var live []models.TranscriptEntry
	s.SetLiveSink(func(e models.TranscriptEntry) {
		mu.Lock()
		live = append(live, e)
		mu.Unlock()
	})

	activate(t, s)
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleInterviewer, Text: "What is a channel?"})
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleInterviewer, Text: "Mm-hm."})
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleCandidate, Text: "Is this also a question?"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, live, 1, "only displayable interviewer utterances surface live")
	assert.Equal(t, "What is a channel?", live[0].Content)

	// everything is still in the transcript regardless
	assert.Equal(t, 3, s.TranscriptLen())
}

func TestSessionEmptyTranscriptSkipsFeedback(t *testing.T) {
	rec := newTriggerRecorder()
	s := newTestSession(rec)
	activate(t, s)

	s.End(context.Background())

	select {
	case <-rec.done:
		t.Fatal("feedback must not fire for an empty transcript")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 0, rec.count())
}

func TestSessionConcurrentEndTriggersFeedbackOnce(t *testing.T) {
	rec := newTriggerRecorder()
	s := newTestSession(rec)
	activate(t, s)
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleCandidate, Text: "answer"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.End(context.Background())
		}()
	}
	// platform-initiated end racing the explicit ends
	s.HandleEvent(context.Background(), Event{Type: EventSessionEnded})
	wg.Wait()

	rec.waitOne(t)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count(), "feedback fired exactly once")
}

func TestSessionErrorWhileConnectingReturnsToIdle(t *testing.T) {
	rec := newTriggerRecorder()
	s := newTestSession(rec)
	require.NoError(t, s.Start())

	cause := errors.New("dial failed")
	s.HandleEvent(context.Background(), Event{Type: EventError, Err: cause})

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, cause, s.Err())
	assert.Equal(t, 0, rec.count(), "no feedback without a session")

	// retry is possible from idle
	require.NoError(t, s.Start())
}

func TestSessionErrorWhileActiveEndsWithFeedback(t *testing.T) {
	rec := newTriggerRecorder()
	s := newTestSession(rec)
	activate(t, s)
	s.HandleEvent(context.Background(), Event{Type: EventTranscript, Role: models.RoleCandidate, Text: "partial answer"})

	s.HandleEvent(context.Background(), Event{Type: EventError, Err: errors.New("connection lost")})

	assert.Equal(t, StateEnded, s.State())
	got := rec.waitOne(t)
	require.Len(t, got, 1, "partial transcript still evaluated")
}

func TestSessionEndWhileConnectingAborts(t *testing.T) {
	rec := newTriggerRecorder()
	s := newTestSession(rec)
	require.NoError(t, s.Start())

	s.End(context.Background())

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 0, rec.count())
}

func TestSessionSpeakingFlag(t *testing.T) {
	s := newTestSession(nil)
	activate(t, s)

	assert.False(t, s.Speaking())
	s.HandleEvent(context.Background(), Event{Type: EventSpeechStarted})
	assert.True(t, s.Speaking())
	s.HandleEvent(context.Background(), Event{Type: EventSpeechEnded})
	assert.False(t, s.Speaking())
}
