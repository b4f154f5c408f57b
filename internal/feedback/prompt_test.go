package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mockmate-ai/mockmate/internal/models"
)

func TestBuildEvaluationPromptLabelsSpeakers(t *testing.T) {
	prompt := BuildEvaluationPrompt([]models.TranscriptEntry{
		{Role: models.RoleInterviewer, Content: "Explain interfaces."},
		{Role: models.RoleCandidate, Content: "They describe behavior."},
	}, `{"tech_stack":["go"]}`)

	assert.Contains(t, prompt, "Interviewer: Explain interfaces.")
	assert.Contains(t, prompt, "Candidate: They describe behavior.")
	assert.Contains(t, prompt, `{"tech_stack":["go"]}`)
	assert.Less(t,
		strings.Index(prompt, "Interviewer: Explain interfaces."),
		strings.Index(prompt, "Candidate: They describe behavior."),
		"transcript order preserved")
}

func TestBuildEvaluationPromptWithoutResume(t *testing.T) {
	prompt := BuildEvaluationPrompt([]models.TranscriptEntry{
		{Role: models.RoleCandidate, Content: "hello"},
	}, "  ")

	assert.Contains(t, prompt, "No resume context available")
}
