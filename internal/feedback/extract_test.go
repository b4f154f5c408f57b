package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeedback = `1. **Overall Performance**
   - Overall rating: 7.5
   - Solid fundamentals with some gaps.

2. **Technical Knowledge**
   - Technical knowledge score: 8
   - Good depth on Go concurrency.

3. **Communication Skills**
   - Communication: 6.5

4. **Problem-Solving Approach**
   - Problem-solving: 7

7. **Recommendation**
   - Hire
`

func TestExtractAllScores(t *testing.T) {
	s := RegexExtractor{}.Extract(sampleFeedback)

	require.NotNil(t, s.OverallRating)
	assert.Equal(t, 7.5, *s.OverallRating)
	require.NotNil(t, s.TechnicalScore)
	assert.Equal(t, 8.0, *s.TechnicalScore)
	require.NotNil(t, s.CommunicationScore)
	assert.Equal(t, 6.5, *s.CommunicationScore)
	require.NotNil(t, s.ProblemSolvingScore)
	assert.Equal(t, 7.0, *s.ProblemSolvingScore)
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "Hire", *s.Recommendation)
}

func TestExtractSlashTenVariant(t *testing.T) {
	s := RegexExtractor{}.Extract("The candidate earns a rating: 8/10 overall.\nRecommendation: Strong Hire")

	require.NotNil(t, s.OverallRating)
	assert.Equal(t, 8.0, *s.OverallRating)
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "Strong Hire", *s.Recommendation)
}

func TestExtractMissingFieldsAreNil(t *testing.T) {
	s := RegexExtractor{}.Extract("The interview went fine. Nothing numeric here.")

	assert.Nil(t, s.OverallRating)
	assert.Nil(t, s.TechnicalScore)
	assert.Nil(t, s.CommunicationScore)
	assert.Nil(t, s.ProblemSolvingScore)
	assert.Nil(t, s.Recommendation)
}

func TestExtractDiscardsOutOfRangeScores(t *testing.T) {
	s := RegexExtractor{}.Extract("Overall rating: 95\nCommunication: 11")

	assert.Nil(t, s.OverallRating, "scores above 10 are discarded")
	assert.Nil(t, s.CommunicationScore)
}

func TestExtractRecommendationPrecedence(t *testing.T) {
	// "Strong Hire" must not be truncated to "Hire"
	s := RegexExtractor{}.Extract("Recommendation: Strong Hire")
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "Strong Hire", *s.Recommendation)

	s = RegexExtractor{}.Extract("Recommendation: no hire")
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "No Hire", *s.Recommendation, "casing is canonicalized")
}

func TestExtractIsPure(t *testing.T) {
	a := RegexExtractor{}.Extract(sampleFeedback)
	b := RegexExtractor{}.Extract(sampleFeedback)
	assert.Equal(t, a, b)
}
