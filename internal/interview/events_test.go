package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate-ai/mockmate/internal/models"
)

func TestNormalizeMessageFieldFallback(t *testing.T) {
	tests := []struct {
		name string
		msg  PlatformMessage
		want string
	}{
		{"transcript field wins", PlatformMessage{Type: "transcript", Transcript: "a", Text: "b", Content: "c"}, "a"},
		{"text when transcript empty", PlatformMessage{Type: "transcript", Text: "b", Content: "c"}, "b"},
		{"content as last resort", PlatformMessage{Type: "transcript", Content: "c"}, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := NormalizeMessage(tt.msg)
			require.True(t, ok)
			assert.Equal(t, tt.want, ev.Text)
			assert.Equal(t, EventTranscript, ev.Type)
		})
	}
}

func TestNormalizeMessageDrops(t *testing.T) {
	_, ok := NormalizeMessage(PlatformMessage{Type: "ping", Text: "hello"})
	assert.False(t, ok, "non-transcript types are dropped")

	_, ok = NormalizeMessage(PlatformMessage{Type: "transcript", Text: "   "})
	assert.False(t, ok, "whitespace-only text is dropped")
}

func TestNormalizeMessageRoleMapping(t *testing.T) {
	ev, ok := NormalizeMessage(PlatformMessage{Type: "transcript", Role: "assistant", Text: "question"})
	require.True(t, ok)
	assert.Equal(t, models.RoleInterviewer, ev.Role)

	ev, ok = NormalizeMessage(PlatformMessage{Type: "transcript", Role: "user", Text: "answer"})
	require.True(t, ok)
	assert.Equal(t, models.RoleCandidate, ev.Role)

	ev, ok = NormalizeMessage(PlatformMessage{Type: "transcript", Role: "something-new", Text: "answer"})
	require.True(t, ok)
	assert.Equal(t, models.RoleCandidate, ev.Role, "unknown roles fall back to candidate")
}

func TestIsDisplayableQuestion(t *testing.T) {
	assert.True(t, IsDisplayableQuestion("What is a goroutine?"))
	assert.True(t, IsDisplayableQuestion("Walk me through how your team deploys services to production"))
	assert.False(t, IsDisplayableQuestion("Okay."))
	assert.False(t, IsDisplayableQuestion("   "))
	assert.True(t, IsDisplayableQuestion("  short but asks? "))
}
