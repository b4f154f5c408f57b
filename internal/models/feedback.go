package models

import (
	"time"

	"gorm.io/datatypes"
)

// FeedbackRecord is the durable result of evaluating a completed interview.
// Scores are nullable: they are extracted from free text best-effort and a
// record with no scores is still valid.
type FeedbackRecord struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID string `gorm:"column:session_id;type:uuid;uniqueIndex" json:"session_id"`

	Transcript     datatypes.JSON `gorm:"column:transcript;type:jsonb" json:"transcript"`
	Feedback       string         `gorm:"column:feedback;type:text" json:"feedback"`
	ResumeAnalysis datatypes.JSON `gorm:"column:resume_analysis;type:jsonb" json:"resume_analysis,omitempty"`

	OverallRating           *float64 `gorm:"column:overall_rating" json:"overall_rating"`
	TechnicalKnowledgeScore *float64 `gorm:"column:technical_knowledge_score" json:"technical_knowledge_score"`
	CommunicationScore      *float64 `gorm:"column:communication_score" json:"communication_score"`
	ProblemSolvingScore     *float64 `gorm:"column:problem_solving_score" json:"problem_solving_score"`
	Recommendation          *string  `gorm:"column:recommendation;type:text" json:"recommendation"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (FeedbackRecord) TableName() string { return "interview_feedback" }
