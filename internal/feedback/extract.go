package feedback

import (
	"regexp"
	"strconv"
	"strings"
)

// Scores are the structured values pulled out of free-text feedback.
// Every field is nullable: extraction is best-effort pattern matching
// over unstructured model output, not a contract.
type Scores struct {
	OverallRating       *float64
	TechnicalScore      *float64
	CommunicationScore  *float64
	ProblemSolvingScore *float64
	Recommendation      *string
}

// Extractor is a pluggable parsing strategy so the regex approach can
// be swapped for a structured-output contract without touching the
// pipeline.
type Extractor interface {
	Extract(feedback string) Scores
}

var (
	reOverall        = regexp.MustCompile(`(?i)Overall rating[:\s]*(\d+(?:\.\d+)?)`)
	reOverallOutOf10 = regexp.MustCompile(`(?i)rating[:\s]*(\d+(?:\.\d+)?)\s*/\s*10`)
	reRecommendation = regexp.MustCompile(`(?i)Recommendation[*:\s]*\n?\s*[-*]?\s*(Strong Hire|Weak Hire|No Hire|Maybe|Hire)`)
	reTechnical      = regexp.MustCompile(`(?i)Technical[^:]*:?\s*(\d+(?:\.\d+)?)`)
	reCommunication  = regexp.MustCompile(`(?i)Communication[^:]*:?\s*(\d+(?:\.\d+)?)`)
	reProblemSolving = regexp.MustCompile(`(?i)Problem[-\s]*Solving[^:]*:?\s*(\d+(?:\.\d+)?)`)
)

// RegexExtractor matches the phrasing the evaluation template asks for.
// It is pure: identical input always yields identical scores.
type RegexExtractor struct{}

func (RegexExtractor) Extract(feedback string) Scores {
	var s Scores

	if v := matchScore(reOverall, feedback); v != nil {
		s.OverallRating = v
	} else {
		s.OverallRating = matchScore(reOverallOutOf10, feedback)
	}
	s.TechnicalScore = matchScore(reTechnical, feedback)
	s.CommunicationScore = matchScore(reCommunication, feedback)
	s.ProblemSolvingScore = matchScore(reProblemSolving, feedback)

	if m := reRecommendation.FindStringSubmatch(feedback); m != nil {
		rec := canonicalRecommendation(m[1])
		s.Recommendation = &rec
	}

	return s
}

// matchScore parses the first capture group as a number and discards
// values outside the 0-10 scale.
func matchScore(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 10 {
		return nil
	}
	return &v
}

var recommendations = map[string]string{
	"strong hire": "Strong Hire",
	"hire":        "Hire",
	"weak hire":   "Weak Hire",
	"maybe":       "Maybe",
	"no hire":     "No Hire",
}

func canonicalRecommendation(raw string) string {
	if c, ok := recommendations[strings.ToLower(raw)]; ok {
		return c
	}
	return raw
}
