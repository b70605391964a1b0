package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IAnalysisService interface {
	RequestAnalysis(ctx context.Context, tenantId, userId uuid.UUID, req *dto.RequestAnalysisRequest) (*dto.AnalysisResponse, error)
	GetAnalysis(ctx context.Context, tenantId, analysisId uuid.UUID) (*dto.AnalysisResponse, error)
}

type analysisService struct {
	uowFactory   unitofwork.RepositoryFactory
	usageService IUsageService
	publisher    message.Publisher
	topicName    string
	logger       logger.ILogger
}

func NewAnalysisService(
	uowFactory unitofwork.RepositoryFactory,
	usageService IUsageService,
	publisher message.Publisher,
	topicName string,
	logger logger.ILogger,
) IAnalysisService {
	return &analysisService{
		uowFactory:   uowFactory,
		usageService: usageService,
		publisher:    publisher,
		topicName:    topicName,
		logger:       logger,
	}
}

// RequestAnalysis queues an analysis job. Jobs still queued count against the
// monthly allowance so a burst of requests cannot overshoot it.
func (s *analysisService) RequestAnalysis(ctx context.Context, tenantId, userId uuid.UUID, req *dto.RequestAnalysisRequest) (*dto.AnalysisResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.DocumentId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, dto.ErrDocumentNotFound
	}

	queued, err := uow.AnalysisRepository().Count(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.ByStatus{Status: string(entity.AnalysisStatusQueued)},
	)
	if err != nil {
		return nil, err
	}
	if err := s.usageService.CheckAdmission(ctx, tenantId, entity.DimensionAnalyses, int(queued)); err != nil {
		return nil, err
	}

	analysis := &entity.Analysis{
		Id:          uuid.New(),
		TenantId:    tenantId,
		DocumentId:  doc.Id,
		RequestedBy: userId,
		Status:      entity.AnalysisStatusQueued,
		CreatedAt:   time.Now(),
	}
	if err := uow.AnalysisRepository().Create(ctx, analysis); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.AnalysisJobMessage{AnalysisId: analysis.Id, TenantId: tenantId})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(s.topicName, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		analysis.Status = entity.AnalysisStatusFailed
		analysis.Error = "could not be queued"
		if updErr := uow.AnalysisRepository().Update(ctx, analysis); updErr != nil {
			s.logger.Error("ANALYSIS", "Failed to mark unqueued analysis", map[string]interface{}{
				"analysis_id": analysis.Id.String(),
				"error":       updErr.Error(),
			})
		}
		return nil, fmt.Errorf("queue analysis: %w", err)
	}

	s.logger.Info("ANALYSIS", "Analysis queued", map[string]interface{}{
		"tenant_id":   tenantId.String(),
		"analysis_id": analysis.Id.String(),
		"document_id": doc.Id.String(),
	})
	return toAnalysisResponse(analysis), nil
}

func (s *analysisService) GetAnalysis(ctx context.Context, tenantId, analysisId uuid.UUID) (*dto.AnalysisResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	analysis, err := uow.AnalysisRepository().FindOne(ctx,
		specification.ByID{ID: analysisId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, dto.ErrAnalysisNotFound
	}
	return toAnalysisResponse(analysis), nil
}

func toAnalysisResponse(a *entity.Analysis) *dto.AnalysisResponse {
	return &dto.AnalysisResponse{
		Id:          a.Id,
		DocumentId:  a.DocumentId,
		Status:      string(a.Status),
		ResultURL:   a.ResultURL,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
}
