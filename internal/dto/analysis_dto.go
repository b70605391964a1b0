package dto

import (
	"time"

	"github.com/google/uuid"
)

type RequestAnalysisRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
}

type AnalysisResponse struct {
	Id          uuid.UUID  `json:"id"`
	DocumentId  uuid.UUID  `json:"document_id"`
	Status      string     `json:"status"`
	ResultURL   string     `json:"result_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AnalysisJobMessage is the payload on the in-process analysis topic.
type AnalysisJobMessage struct {
	AnalysisId uuid.UUID `json:"analysis_id"`
	TenantId   uuid.UUID `json:"tenant_id"`
}
