package entity

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	AnalysisStatusQueued    AnalysisStatus = "queued"
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

type Analysis struct {
	Id          uuid.UUID
	TenantId    uuid.UUID
	DocumentId  uuid.UUID
	RequestedBy uuid.UUID
	Status      AnalysisStatus
	ResultURL   string
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
