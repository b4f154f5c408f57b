package voice

import (
	"context"
	"fmt"
	"strings"

	"github.com/mockmate-ai/mockmate/internal/interview"
	"github.com/mockmate-ai/mockmate/internal/models"
)

// AssistantConfig is what a session start carries to the platform: the
// model to run and the interviewer persona prompt.
type AssistantConfig struct {
	Model        string
	SystemPrompt string
	Language     string
}

// AudioChunk is one piece of candidate audio pushed into a live
// session. Either Base64 or URL is set.
type AudioChunk struct {
	Index   int64
	Base64  string
	URL     string
	IsFinal bool
}

// SessionHandle is one live voice session. Events delivers the closed
// event set until the session ends, then closes.
type SessionHandle interface {
	Events() <-chan interview.Event
	PushAudio(ctx context.Context, chunk AudioChunk) error
	Stop(ctx context.Context) error
}

// Platform is the realtime voice collaborator boundary.
type Platform interface {
	StartSession(ctx context.Context, sessionID string, cfg AssistantConfig) (SessionHandle, error)
}

const defaultQuestionCount = 5

// BuildInterviewerPrompt renders the fixed interviewer instructions
// around the candidate's resume analysis. The persona asks technical
// questions about the declared tech stack only, then concludes.
func BuildInterviewerPrompt(analysis *models.ResumeAnalysis, md models.SessionMetadata) string {
	n := md.QuestionCount
	if n <= 0 {
		n = defaultQuestionCount
	}

	var b strings.Builder
	b.WriteString("You are a professional technical interviewer conducting a mock interview.\n")
	if md.Position != "" {
		fmt.Fprintf(&b, "The candidate is interviewing for a %s position.\n", md.Position)
	}

	if analysis != nil {
		if analysis.FullName != "" {
			fmt.Fprintf(&b, "Candidate name: %s.\n", analysis.FullName)
		}
		if len(analysis.TechStack) > 0 {
			fmt.Fprintf(&b, "Candidate tech stack: %s.\n", strings.Join(analysis.TechStack, ", "))
		}
		if analysis.Seniority != "" {
			fmt.Fprintf(&b, "Estimated seniority: %s.\n", analysis.Seniority)
		}
		if len(analysis.WeakAreas) > 0 {
			fmt.Fprintf(&b, "Probe these weaker areas: %s.\n", strings.Join(analysis.WeakAreas, ", "))
		}
	}

	fmt.Fprintf(&b, "\nAsk exactly %d technical questions about the candidate's tech stack only. ", n)
	b.WriteString("Do not ask behavioral or project questions. Ask one question at a time, ")
	b.WriteString("wait for the answer, ask a short follow-up when the answer is vague, ")
	b.WriteString("and after the final answer thank the candidate and conclude the interview.")
	return b.String()
}
