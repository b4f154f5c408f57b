package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mockmate-ai/mockmate/internal/models"
)

func TestBuildInterviewerPromptWithAnalysis(t *testing.T) {
	prompt := BuildInterviewerPrompt(&models.ResumeAnalysis{
		FullName:  "Ada",
		TechStack: []string{"Go", "PostgreSQL", "Redis"},
		WeakAreas: []string{"Kubernetes"},
		Seniority: "intermediate",
	}, models.SessionMetadata{Position: "Backend Engineer", QuestionCount: 3})

	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "Go, PostgreSQL, Redis")
	assert.Contains(t, prompt, "Kubernetes")
	assert.Contains(t, prompt, "Ask exactly 3 technical questions")
	assert.Contains(t, prompt, "Do not ask behavioral or project questions.")
}

func TestBuildInterviewerPromptDefaults(t *testing.T) {
	prompt := BuildInterviewerPrompt(nil, models.SessionMetadata{})

	assert.Contains(t, prompt, "Ask exactly 5 technical questions")
	assert.NotContains(t, prompt, "Candidate tech stack")
}

func TestSessionChannelNames(t *testing.T) {
	assert.Equal(t, "session:abc:response", respChannel("abc"))
	assert.Equal(t, "session:abc:status", statusChannel("abc"))
	assert.Equal(t, "session:abc:prompt", promptKey("abc"))
	assert.Equal(t, "session:abc:language", languageKey("abc"))
}
