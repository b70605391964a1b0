package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileUploadResult reports one file of a batch. Withdrawn files are absent.
type FileUploadResult struct {
	CandidateId uuid.UUID         `json:"candidate_id"`
	FileName    string            `json:"file_name"`
	Status      string            `json:"status"`
	Errors      []string          `json:"errors"`
	Document    *DocumentResponse `json:"document,omitempty"`
}

type UploadBatchResponse struct {
	Accepted int                `json:"accepted"`
	Rejected int                `json:"rejected"`
	Results  []FileUploadResult `json:"results"`
}

type SecurityEventResponse struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

type UploadAuditResponse struct {
	Id          uuid.UUID  `json:"id"`
	CandidateId uuid.UUID  `json:"candidate_id"`
	FileName    string     `json:"file_name"`
	MimeType    string     `json:"mime_type"`
	SizeBytes   int64      `json:"size_bytes"`
	Outcome     string     `json:"outcome"`
	Reasons     []string   `json:"reasons"`
	DocumentId  *uuid.UUID `json:"document_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
