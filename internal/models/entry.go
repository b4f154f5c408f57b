package models

import "time"

type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// RoleFromPlatform maps the voice platform's speaker roles onto ours.
// Unknown roles are treated as the candidate side.
func RoleFromPlatform(role string) Role {
	if role == "assistant" {
		return RoleInterviewer
	}
	return RoleCandidate
}

// TranscriptEntry is one recorded utterance of a live interview.
type TranscriptEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
