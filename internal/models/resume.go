package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ResumeFile struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	FileName string `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath string `gorm:"column:file_path;type:text" json:"file_path"` // object key in the bucket

	FileSize int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType string `gorm:"column:mime_type;type:text" json:"mime_type"`

	UploadAt time.Time `gorm:"column:upload_at;type:timestamptz" json:"upload_at"`
}

func (ResumeFile) TableName() string { return "resume_files" }

// ResumeAnalysis is the structured result of running the resume text through
// the LLM. Raw keeps the model's full JSON answer; the typed columns are the
// fields the interviewer prompt and dashboard actually use.
type ResumeAnalysis struct {
	UserID   string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	ResumeID string `gorm:"column:resume_id;type:uuid;index" json:"resume_id"`

	FullName        string         `gorm:"column:full_name;type:text" json:"full_name"`
	Skills          pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`
	TechStack       pq.StringArray `gorm:"column:tech_stack;type:text[]" json:"tech_stack"`
	WeakAreas       pq.StringArray `gorm:"column:weak_areas;type:text[]" json:"weak_areas"`
	ExperienceYears float64        `gorm:"column:experience_years" json:"experience_years"`
	Education       string         `gorm:"column:education;type:text" json:"education"`
	Seniority       string         `gorm:"column:seniority;type:text" json:"seniority"` // beginner|intermediate|advanced

	Raw datatypes.JSON `gorm:"column:raw;type:jsonb" json:"raw"`

	// Optional resume embedding for similarity lookups; zero when the
	// analyze request carries no vector.
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"embedding"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (ResumeAnalysis) TableName() string { return "resume_analyses" }
