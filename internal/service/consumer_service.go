package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/pkg/metrics"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/pkg/analysis"
	"far-compliance-be/pkg/audit"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService runs queued analysis jobs. The monthly analysis counter is
// only incremented when the analyzer succeeds.
type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	uowFactory   unitofwork.RepositoryFactory
	analyzer     analysis.Analyzer
	usageService IUsageService
	publisher    audit.Publisher
	metrics      *metrics.Collector
	logger       logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	analyzer analysis.Analyzer,
	usageService IUsageService,
	publisher audit.Publisher,
	metrics *metrics.Collector,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		uowFactory:   uowFactory,
		analyzer:     analyzer,
		usageService: usageService,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AnalysisJobMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal analysis job", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying cannot help
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.AnalysisRepository().FindOne(ctx,
		specification.ByID{ID: payload.AnalysisId},
		specification.TenantOwnedBy{TenantID: payload.TenantId},
	)
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to load analysis", map[string]interface{}{
			"analysis_id": payload.AnalysisId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if job == nil || job.Status != entity.AnalysisStatusQueued {
		// Deleted or already handled by an earlier delivery.
		msg.Ack()
		return
	}

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: job.DocumentId},
		specification.TenantOwnedBy{TenantID: job.TenantId},
	)
	if err != nil {
		msg.Nack()
		return
	}
	if doc == nil {
		cs.finish(ctx, msg, job, nil, dto.ErrDocumentNotFound)
		return
	}

	result, err := cs.analyzer.Analyze(ctx, analysis.Request{
		AnalysisId:  job.Id,
		TenantId:    job.TenantId,
		DocumentId:  doc.Id,
		FileName:    doc.OriginalName,
		MimeType:    doc.MimeType,
		DocumentURL: doc.PublicURL,
	})
	cs.finish(ctx, msg, job, result, err)
}

// finish stores the terminal status. Success and the counter increment are
// committed together.
func (cs *consumerService) finish(ctx context.Context, msg *message.Message, job *entity.Analysis, result *analysis.Result, runErr error) {
	if runErr == nil && result == nil {
		runErr = errors.New("analysis returned no result")
	}
	now := time.Now()
	job.CompletedAt = &now
	if runErr != nil {
		job.Status = entity.AnalysisStatusFailed
		job.Error = runErr.Error()
	} else {
		job.Status = entity.AnalysisStatusCompleted
		job.ResultURL = result.ResultURL
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.AnalysisRepository().Update(ctx, job); err != nil {
		cs.logger.Error("CONSUMER", "Failed to update analysis", map[string]interface{}{
			"analysis_id": job.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if job.Status == entity.AnalysisStatusCompleted {
		if err := uow.UsageRepository().Increment(ctx, job.TenantId, entity.DimensionAnalyses, 1); err != nil {
			cs.logger.Error("CONSUMER", "Failed to record analysis usage", map[string]interface{}{
				"analysis_id": job.Id.String(),
				"error":       err.Error(),
			})
			msg.Nack()
			return
		}
	}
	if err := uow.Commit(); err != nil {
		msg.Nack()
		return
	}

	if job.Status == entity.AnalysisStatusCompleted {
		cs.usageService.CountersChanged(ctx, job.TenantId)
	}
	cs.metrics.AnalysisJobs.WithLabelValues(string(job.Status)).Inc()
	cs.publisher.PublishAnalysisCompleted(ctx, job.TenantId, job.Id, job.DocumentId, string(job.Status))

	details := map[string]interface{}{
		"tenant_id":   job.TenantId.String(),
		"analysis_id": job.Id.String(),
		"status":      string(job.Status),
	}
	if runErr != nil {
		details["error"] = runErr.Error()
		cs.logger.Warn("CONSUMER", "Analysis failed", details)
	} else {
		cs.logger.Info("CONSUMER", "Analysis completed", details)
	}
	msg.Ack()
}
