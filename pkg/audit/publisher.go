package audit

import (
	"context"
	"time"

	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/pkg/events"

	"github.com/google/uuid"
)

// Sink is satisfied by *nats.Publisher.
type Sink interface {
	Publish(ctx context.Context, event events.Event) error
}

// Publisher emits upload and usage audit events. Publishing is best effort:
// failures are logged and never fail the request.
type Publisher interface {
	PublishContentUnsafe(ctx context.Context, tenantId, userId, candidateId uuid.UUID, fileName, reason string, indeterminate bool)
	PublishUploadAccepted(ctx context.Context, tenantId, userId, documentId uuid.UUID, fileName string, sizeBytes int64)
	PublishAdmissionDenied(ctx context.Context, tenantId uuid.UUID, dimension string, used, limit int, reason string)
	PublishUsageApproaching(ctx context.Context, tenantId uuid.UUID, percentages map[string]int)
	PublishAnalysisCompleted(ctx context.Context, tenantId, analysisId, documentId uuid.UUID, status string)
}

type EventPublisher struct {
	sink   Sink
	logger logger.ILogger
	now    func() time.Time
}

// NewEventPublisher accepts a nil sink, which turns every call into a no-op.
func NewEventPublisher(sink Sink, logger logger.ILogger) *EventPublisher {
	return &EventPublisher{sink: sink, logger: logger, now: time.Now}
}

func (p *EventPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.sink == nil {
		return
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: p.now()}
	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("AUDIT", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *EventPublisher) PublishContentUnsafe(ctx context.Context, tenantId, userId, candidateId uuid.UUID, fileName, reason string, indeterminate bool) {
	p.publish(ctx, events.TypeUploadContentUnsafe, map[string]interface{}{
		"tenant_id":     tenantId.String(),
		"user_id":       userId.String(),
		"candidate_id":  candidateId.String(),
		"file_name":     fileName,
		"reason":        reason,
		"indeterminate": indeterminate,
		"entity_type":   "upload",
		"entity_id":     candidateId.String(),
	})
}

func (p *EventPublisher) PublishUploadAccepted(ctx context.Context, tenantId, userId, documentId uuid.UUID, fileName string, sizeBytes int64) {
	p.publish(ctx, events.TypeUploadAccepted, map[string]interface{}{
		"tenant_id":   tenantId.String(),
		"user_id":     userId.String(),
		"document_id": documentId.String(),
		"file_name":   fileName,
		"size_bytes":  sizeBytes,
		"entity_type": "document",
		"entity_id":   documentId.String(),
	})
}

func (p *EventPublisher) PublishAdmissionDenied(ctx context.Context, tenantId uuid.UUID, dimension string, used, limit int, reason string) {
	p.publish(ctx, events.TypeAdmissionDenied, map[string]interface{}{
		"tenant_id":   tenantId.String(),
		"dimension":   dimension,
		"used":        used,
		"limit":       limit,
		"reason":      reason,
		"entity_type": "tenant",
		"entity_id":   tenantId.String(),
	})
}

func (p *EventPublisher) PublishUsageApproaching(ctx context.Context, tenantId uuid.UUID, percentages map[string]int) {
	p.publish(ctx, events.TypeUsageApproaching, map[string]interface{}{
		"tenant_id":   tenantId.String(),
		"percentages": percentages,
		"entity_type": "tenant",
		"entity_id":   tenantId.String(),
	})
}

func (p *EventPublisher) PublishAnalysisCompleted(ctx context.Context, tenantId, analysisId, documentId uuid.UUID, status string) {
	p.publish(ctx, events.TypeAnalysisCompleted, map[string]interface{}{
		"tenant_id":   tenantId.String(),
		"analysis_id": analysisId.String(),
		"document_id": documentId.String(),
		"status":      status,
		"entity_type": "analysis",
		"entity_id":   analysisId.String(),
	})
}
