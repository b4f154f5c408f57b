package interview

import (
	"strings"

	"github.com/mockmate-ai/mockmate/internal/models"
)

type EventType string

const (
	EventSessionStarted EventType = "session-started"
	EventSessionEnded   EventType = "session-ended"
	EventSpeechStarted  EventType = "speech-started"
	EventSpeechEnded    EventType = "speech-ended"
	EventTranscript     EventType = "transcript"
	EventError          EventType = "error"
)

// Event is the closed set of signals the voice platform can deliver to a
// session. Role and Text are only set for transcript events, Err only for
// error events.
type Event struct {
	Type EventType
	Role models.Role
	Text string
	Err  error
}

// PlatformMessage is the wire shape of a platform "message" event. The
// platform is not consistent about which field carries the utterance, so
// all three are kept and collapsed in one place.
type PlatformMessage struct {
	Type       string `json:"type"`
	Role       string `json:"role"`
	Transcript string `json:"transcript,omitempty"`
	Text       string `json:"text,omitempty"`
	Content    string `json:"content,omitempty"`
}

// NormalizeMessage converts a raw platform message into a transcript
// event. Non-transcript messages and messages with no usable text are
// dropped (ok == false).
func NormalizeMessage(msg PlatformMessage) (Event, bool) {
	if msg.Type != "transcript" {
		return Event{}, false
	}

	text := msg.Transcript
	if text == "" {
		text = msg.Text
	}
	if text == "" {
		text = msg.Content
	}
	if strings.TrimSpace(text) == "" {
		return Event{}, false
	}

	return Event{
		Type: EventTranscript,
		Role: models.RoleFromPlatform(msg.Role),
		Text: text,
	}, true
}

// minQuestionLen is the length threshold of the displayable-question
// heuristic: an interviewer utterance without a question mark is still
// surfaced live when it is at least this long.
const minQuestionLen = 40

// IsDisplayableQuestion decides whether an utterance is surfaced live in
// the UI. It never affects what is recorded in the transcript.
func IsDisplayableQuestion(text string) bool {
	text = strings.TrimSpace(text)
	return strings.Contains(text, "?") || len(text) >= minQuestionLen
}
