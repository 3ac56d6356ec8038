package domain

import "time"

// Document is an uploaded artifact reduced to plain text
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Text       string    `json:"text"`
	Topics     []string  `json:"topics,omitempty"`
	Language   string    `json:"language,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// JobStatus represents the lifecycle of a batch synthesis job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the job has finished, successfully or not
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Progress is the pollable record for one document's synthesis job.
// Writers replace the whole record; readers never observe a partial
// update.
type Progress struct {
	DocumentID   string    `json:"document_id"`
	Status       JobStatus `json:"status"`
	Percent      int       `json:"percent"`
	Message      string    `json:"message"`
	Topics       []string  `json:"topics,omitempty"`
	ChallengeIDs []string  `json:"challenge_ids,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
