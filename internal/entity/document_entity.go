package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id           uuid.UUID
	TenantId     uuid.UUID
	UploadedBy   uuid.UUID
	OriginalName string
	StoredName   string
	MimeType     string
	SizeBytes    int64
	StoragePath  string
	PublicURL    string
	CreatedAt    time.Time
}

type UploadOutcome string

const (
	UploadOutcomeAccepted        UploadOutcome = "accepted"
	UploadOutcomeInvalid         UploadOutcome = "rejected_invalid"
	UploadOutcomeUnsafe          UploadOutcome = "rejected_unsafe"
	UploadOutcomeAdmissionDenied UploadOutcome = "rejected_admission"
	UploadOutcomeStorageFailed   UploadOutcome = "storage_failed"
)

// UploadAudit records one upload attempt and why it ended the way it did.
type UploadAudit struct {
	Id          uuid.UUID
	TenantId    uuid.UUID
	UserId      uuid.UUID
	CandidateId uuid.UUID
	FileName    string
	MimeType    string
	SizeBytes   int64
	Outcome     UploadOutcome
	Reasons     []string
	DocumentId  *uuid.UUID
	CreatedAt   time.Time
}
