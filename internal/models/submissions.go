package models

import (
	"time"
)

// Submission statuses. A submission is created in StatusProcessing and is
// moved exactly once to StatusCompleted or StatusFailed by the generation
// tail.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Submission struct {
	ID               string                 `json:"id" db:"id"`
	AccountID        string                 `json:"account_id" db:"account_id"`
	Title            string                 `json:"title" db:"title"`
	Category         string                 `json:"category" db:"category"`
	OriginalContent  string                 `json:"original_content,omitempty" db:"original_content"`
	GeneratedContent string                 `json:"generated_content,omitempty" db:"generated_content"`
	OutputFormat     string                 `json:"output_format" db:"output_format"`
	Status           string                 `json:"status" db:"status"`
	Metadata         map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	ShareToken       *string                `json:"share_token,omitempty" db:"share_token"`
	StorageKey       string                 `json:"-" db:"storage_key"`
	CreatedAt        time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at" db:"updated_at"`
}

type SubmitRequest struct {
	AccountID    string
	File         []byte
	Filename     string
	ContentType  string
	Category     string
	OutputFormat string
	Metadata     map[string]interface{}
}

type SubmitResponse struct {
	SubmissionID string    `json:"submission_id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	Message      string    `json:"message"`
}
