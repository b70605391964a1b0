package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/pkg/metrics"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/pkg/audit"
	"far-compliance-be/pkg/storage"
	"far-compliance-be/pkg/upload"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	uploadStatusAccepted = "accepted"
	uploadStatusRejected = "rejected"
	uploadStatusFailed   = "failed"
)

var uploadTracer = otel.Tracer("far-compliance-be/upload")

type IUploadService interface {
	UploadDocuments(ctx context.Context, tenantId, userId uuid.UUID, candidates []*upload.Candidate) (*dto.UploadBatchResponse, error)
	WithdrawUpload(ctx context.Context, tenantId, candidateId uuid.UUID) error
	ListDocuments(ctx context.Context, tenantId uuid.UUID) ([]*dto.DocumentResponse, error)
	ListUploadAudits(ctx context.Context, tenantId uuid.UUID, limit, offset int) ([]*dto.UploadAuditResponse, error)
}

type uploadService struct {
	uowFactory     unitofwork.RepositoryFactory
	usageService   IUsageService
	pipeline       *upload.Pipeline
	storage        storage.Storage
	publisher      audit.Publisher
	metrics        *metrics.Collector
	logger         logger.ILogger
	securityLogger logger.ILogger
	now            func() time.Time
}

func NewUploadService(
	uowFactory unitofwork.RepositoryFactory,
	usageService IUsageService,
	pipeline *upload.Pipeline,
	storage storage.Storage,
	publisher audit.Publisher,
	metrics *metrics.Collector,
	logger logger.ILogger,
	securityLogger logger.ILogger,
) IUploadService {
	return &uploadService{
		uowFactory:     uowFactory,
		usageService:   usageService,
		pipeline:       pipeline,
		storage:        storage,
		publisher:      publisher,
		metrics:        metrics,
		logger:         logger,
		securityLogger: securityLogger,
		now:            time.Now,
	}
}

func pendingKey(tenantId, candidateId uuid.UUID) string {
	return tenantId.String() + ":" + candidateId.String()
}

// UploadDocuments admits, validates, scans and stores a batch. Files are
// judged independently; a single-file request surfaces its rejection as the
// returned error instead of a per-file result.
func (s *uploadService) UploadDocuments(ctx context.Context, tenantId, userId uuid.UUID, candidates []*upload.Candidate) (*dto.UploadBatchResponse, error) {
	ctx, span := uploadTracer.Start(ctx, "UploadService.UploadDocuments")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant.id", tenantId.String()),
		attribute.Int("upload.files", len(candidates)),
	)

	if err := s.pipeline.Validator().ValidateBatch(candidates); err != nil {
		return nil, &dto.ValidationFailedError{Errors: []string{err.Error()}}
	}

	seen := make(map[uuid.UUID]bool, len(candidates))
	for _, c := range candidates {
		if c.ID == uuid.Nil || seen[c.ID] {
			c.ID = uuid.New()
		}
		seen[c.ID] = true
	}

	if err := s.usageService.CheckAdmission(ctx, tenantId, entity.DimensionDocuments, 0); err != nil {
		var denied *dto.AdmissionDeniedError
		if errors.As(err, &denied) {
			for _, c := range candidates {
				s.recordAudit(ctx, tenantId, userId, c, entity.UploadOutcomeAdmissionDenied, []string{denied.Error()}, nil)
			}
		}
		return nil, err
	}

	scanCtx, scanSpan := uploadTracer.Start(ctx, "upload.validate_and_scan")
	outcomes, err := s.pipeline.Process(scanCtx, candidates, func(c *upload.Candidate) string {
		return pendingKey(tenantId, c.ID)
	})
	scanSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline aborted")
		return nil, fmt.Errorf("process upload batch: %w", err)
	}

	res := &dto.UploadBatchResponse{Results: make([]dto.FileUploadResult, 0, len(candidates))}
	var firstRejection error

	for _, c := range candidates {
		outcome, ok := outcomes[c.ID]
		if !ok {
			s.logger.Info("UPLOAD", "Dropped result of withdrawn upload", map[string]interface{}{
				"tenant_id":    tenantId.String(),
				"candidate_id": c.ID.String(),
			})
			continue
		}

		result := dto.FileUploadResult{CandidateId: c.ID, FileName: c.Name, Errors: []string{}}

		switch {
		case outcome.Scan == nil:
			result.Status = uploadStatusRejected
			result.Errors = outcome.Errors()
			s.recordAudit(ctx, tenantId, userId, c, entity.UploadOutcomeInvalid, result.Errors, nil)
			if firstRejection == nil {
				firstRejection = &dto.ValidationFailedError{Errors: result.Errors}
			}

		case !outcome.Scan.Safe:
			s.metrics.ObserveScan(false, outcome.Scan.Indeterminate)
			result.Status = uploadStatusRejected
			result.Errors = outcome.Errors()
			s.rejectUnsafe(ctx, tenantId, userId, c, *outcome.Scan)
			if firstRejection == nil {
				firstRejection = &dto.ContentUnsafeError{Reason: outcome.Scan.Reason}
			}

		default:
			s.metrics.ObserveScan(true, outcome.Scan.Indeterminate)
			doc, storeErr := s.store(ctx, tenantId, userId, c)
			if storeErr != nil {
				var denied *dto.AdmissionDeniedError
				if errors.As(storeErr, &denied) {
					result.Status = uploadStatusRejected
					s.recordAudit(ctx, tenantId, userId, c, entity.UploadOutcomeAdmissionDenied, []string{denied.Error()}, nil)
					if firstRejection == nil {
						firstRejection = storeErr
					}
				} else {
					result.Status = uploadStatusFailed
					s.recordAudit(ctx, tenantId, userId, c, entity.UploadOutcomeStorageFailed, []string{storeErr.Error()}, nil)
					if firstRejection == nil {
						firstRejection = storeErr
					}
				}
				result.Errors = []string{storeErr.Error()}
				break
			}
			result.Status = uploadStatusAccepted
			result.Document = toDocumentResponse(doc)
			s.recordAudit(ctx, tenantId, userId, c, entity.UploadOutcomeAccepted, nil, &doc.Id)
			s.publisher.PublishUploadAccepted(ctx, tenantId, userId, doc.Id, c.Name, c.SizeBytes)
		}

		if result.Status == uploadStatusAccepted {
			res.Accepted++
		} else {
			res.Rejected++
		}
		res.Results = append(res.Results, result)
	}

	span.SetAttributes(attribute.Int("upload.accepted", res.Accepted), attribute.Int("upload.rejected", res.Rejected))

	if len(candidates) == 1 && res.Rejected == 1 {
		return nil, firstRejection
	}
	return res, nil
}

// store re-checks admission for one scanned file, writes the bytes and
// persists the document together with its counter increment. The stored
// object is removed again if the database write fails.
func (s *uploadService) store(ctx context.Context, tenantId, userId uuid.UUID, c *upload.Candidate) (*entity.Document, error) {
	ctx, span := uploadTracer.Start(ctx, "upload.store")
	defer span.End()

	// Counters are committed per file, so earlier files of this batch are
	// already included here.
	if err := s.usageService.CheckAdmission(ctx, tenantId, entity.DimensionDocuments, 0); err != nil {
		return nil, err
	}

	now := s.now()
	storedName := upload.GenerateSafeFilename(c.Name, now)
	key := tenantId.String() + "/" + storedName

	body, err := c.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer body.Close()

	obj, err := s.storage.Put(ctx, key, body, c.SizeBytes, c.MimeType)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &entity.Document{
		Id:           uuid.New(),
		TenantId:     tenantId,
		UploadedBy:   userId,
		OriginalName: c.Name,
		StoredName:   storedName,
		MimeType:     c.MimeType,
		SizeBytes:    c.SizeBytes,
		StoragePath:  obj.Path,
		PublicURL:    obj.URL,
		CreatedAt:    now,
	}

	if err := s.persist(ctx, doc); err != nil {
		span.RecordError(err)
		if delErr := s.storage.Delete(ctx, obj.Key); delErr != nil {
			s.logger.Error("UPLOAD", "Failed to remove orphaned object", map[string]interface{}{
				"key":   obj.Key,
				"error": delErr.Error(),
			})
		}
		return nil, fmt.Errorf("persist document: %w", err)
	}

	s.usageService.CountersChanged(ctx, tenantId)
	return doc, nil
}

func (s *uploadService) persist(ctx context.Context, doc *entity.Document) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return err
	}
	if err := uow.UsageRepository().Increment(ctx, doc.TenantId, entity.DimensionDocuments, 1); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *uploadService) rejectUnsafe(ctx context.Context, tenantId, userId uuid.UUID, c *upload.Candidate, scan upload.ScanResult) {
	s.securityLogger.Warn("UPLOAD_SECURITY", "Upload content rejected", map[string]interface{}{
		"tenant_id":     tenantId.String(),
		"user_id":       userId.String(),
		"candidate_id":  c.ID.String(),
		"file_name":     c.Name,
		"mime_type":     c.MimeType,
		"size_bytes":    c.SizeBytes,
		"reason":        scan.Reason,
		"indeterminate": scan.Indeterminate,
	})
	s.recordAudit(ctx, tenantId, userId, c, entity.UploadOutcomeUnsafe, []string{scan.Reason}, nil)
	s.publisher.PublishContentUnsafe(ctx, tenantId, userId, c.ID, c.Name, scan.Reason, scan.Indeterminate)
}

// recordAudit never fails the request; a lost audit row is logged instead.
func (s *uploadService) recordAudit(ctx context.Context, tenantId, userId uuid.UUID, c *upload.Candidate, outcome entity.UploadOutcome, reasons []string, documentId *uuid.UUID) {
	s.metrics.UploadOutcomes.WithLabelValues(string(outcome)).Inc()

	auditRow := &entity.UploadAudit{
		Id:          uuid.New(),
		TenantId:    tenantId,
		UserId:      userId,
		CandidateId: c.ID,
		FileName:    c.Name,
		MimeType:    c.MimeType,
		SizeBytes:   c.SizeBytes,
		Outcome:     outcome,
		Reasons:     reasons,
		DocumentId:  documentId,
		CreatedAt:   s.now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UploadAuditRepository().Create(ctx, auditRow); err != nil {
		s.logger.Error("UPLOAD", "Failed to write upload audit", map[string]interface{}{
			"tenant_id":    tenantId.String(),
			"candidate_id": c.ID.String(),
			"outcome":      string(outcome),
			"error":        err.Error(),
		})
	}
}

func (s *uploadService) WithdrawUpload(ctx context.Context, tenantId, candidateId uuid.UUID) error {
	if !s.pipeline.Pending().Withdraw(pendingKey(tenantId, candidateId)) {
		return dto.ErrUploadNotPending
	}
	s.logger.Info("UPLOAD", "Upload withdrawn", map[string]interface{}{
		"tenant_id":    tenantId.String(),
		"candidate_id": candidateId.String(),
	})
	return nil
}

func (s *uploadService) ListDocuments(ctx context.Context, tenantId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.TenantOwnedBy{TenantID: tenantId})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, toDocumentResponse(d))
	}
	return res, nil
}

// auditPage defaults a missing limit to 50 and caps it at 200.
func auditPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *uploadService) ListUploadAudits(ctx context.Context, tenantId uuid.UUID, limit, offset int) ([]*dto.UploadAuditResponse, error) {
	limit, offset = auditPage(limit, offset)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	audits, err := uow.UploadAuditRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.UploadAuditResponse, 0, len(audits))
	for _, a := range audits {
		reasons := a.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		res = append(res, &dto.UploadAuditResponse{
			Id:          a.Id,
			CandidateId: a.CandidateId,
			FileName:    a.FileName,
			MimeType:    a.MimeType,
			SizeBytes:   a.SizeBytes,
			Outcome:     string(a.Outcome),
			Reasons:     reasons,
			DocumentId:  a.DocumentId,
			CreatedAt:   a.CreatedAt,
		})
	}
	return res, nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:           d.Id,
		OriginalName: d.OriginalName,
		StoredName:   d.StoredName,
		MimeType:     d.MimeType,
		SizeBytes:    d.SizeBytes,
		URL:          d.PublicURL,
		CreatedAt:    d.CreatedAt,
	}
}
