package feedback

import (
	"strings"

	"github.com/mockmate-ai/mockmate/internal/models"
)

const evaluationTemplate = `You are an expert technical interview evaluator. Analyze the following interview transcript and provide comprehensive feedback.

Resume Context:
%RESUME%

Interview Transcript:
%TRANSCRIPT%

Please provide detailed feedback in the following structure:

1. **Overall Performance**
   - Overall rating (1-10)
   - Summary of candidate's performance

2. **Technical Knowledge**
   - Strengths demonstrated
   - Areas that need improvement
   - Depth of understanding shown

3. **Communication Skills**
   - Clarity of explanations
   - Ability to articulate technical concepts
   - Response structure and organization

4. **Problem-Solving Approach**
   - How the candidate approached questions
   - Logical thinking demonstrated
   - Areas for improvement

5. **Key Strengths**
   - List 3-5 main strengths

6. **Areas for Improvement**
   - List 3-5 areas that need work
   - Specific recommendations

7. **Recommendation**
   - One of: Strong Hire, Hire, Weak Hire, Maybe, No Hire

Keep the feedback professional, constructive, and specific. Reference actual examples from the transcript where possible.`

// BuildEvaluationPrompt renders the transcript as speaker-labelled lines
// in original order, with the resume analysis passed through opaquely.
func BuildEvaluationPrompt(transcript []models.TranscriptEntry, resumeAnalysis string) string {
	lines := make([]string, 0, len(transcript))
	for _, e := range transcript {
		label := "Candidate"
		if e.Role == models.RoleInterviewer {
			label = "Interviewer"
		}
		lines = append(lines, label+": "+e.Content)
	}

	resume := resumeAnalysis
	if strings.TrimSpace(resume) == "" {
		resume = "No resume context available"
	}

	out := strings.Replace(evaluationTemplate, "%RESUME%", resume, 1)
	return strings.Replace(out, "%TRANSCRIPT%", strings.Join(lines, "\n\n"), 1)
}
