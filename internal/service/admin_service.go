package service

import (
	"context"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"
)

// IAdminService backs the operator endpoints: security events recorded by
// the upload scanner and tenant provisioning.
type IAdminService interface {
	GetSecurityEvents(ctx context.Context, page, limit int, level string) ([]*dto.SecurityEventResponse, error)
	GetSecurityEvent(ctx context.Context, id string) (*dto.SecurityEventResponse, error)
	ListTenants(ctx context.Context, tier string) ([]*dto.TenantSummaryResponse, error)
	ProvisionTenant(ctx context.Context, req dto.ProvisionTenantRequest) (*dto.UsageStatusResponse, error)
}

type adminService struct {
	uowFactory     unitofwork.RepositoryFactory
	usageService   IUsageService
	securityLogger logger.ILogger
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, usageService IUsageService, securityLogger logger.ILogger) IAdminService {
	return &adminService{
		uowFactory:     uowFactory,
		usageService:   usageService,
		securityLogger: securityLogger,
	}
}

func (s *adminService) GetSecurityEvents(ctx context.Context, page, limit int, level string) ([]*dto.SecurityEventResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	entries, err := s.securityLogger.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SecurityEventResponse, 0, len(entries))
	for i := range entries {
		res = append(res, toSecurityEventResponse(&entries[i]))
	}
	return res, nil
}

func (s *adminService) GetSecurityEvent(ctx context.Context, id string) (*dto.SecurityEventResponse, error) {
	entry, err := s.securityLogger.GetLogById(id)
	if err != nil {
		return nil, err
	}
	return toSecurityEventResponse(entry), nil
}

func (s *adminService) ListTenants(ctx context.Context, tier string) ([]*dto.TenantSummaryResponse, error) {
	var specs []specification.Specification
	if tier != "" {
		specs = append(specs, specification.ByTier{Tier: tier})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	profiles, err := uow.TenantRepository().FindAllProfiles(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TenantSummaryResponse, 0, len(profiles))
	for _, p := range profiles {
		summary := &dto.TenantSummaryResponse{
			TenantId:   p.TenantId,
			Name:       p.Name,
			OwnerEmail: p.OwnerEmail,
			Tier:       string(p.Tier),
			CreatedAt:  p.CreatedAt,
		}
		if p.Tier == entity.TierTrial {
			end := p.TrialEndDate
			summary.TrialEndDate = &end
		}
		res = append(res, summary)
	}
	return res, nil
}

func (s *adminService) ProvisionTenant(ctx context.Context, req dto.ProvisionTenantRequest) (*dto.UsageStatusResponse, error) {
	return s.usageService.ProvisionTenant(ctx, req)
}

func toSecurityEventResponse(e *logger.LogEntry) *dto.SecurityEventResponse {
	return &dto.SecurityEventResponse{
		Id:        e.Id,
		Timestamp: e.Timestamp,
		Level:     e.Level,
		Message:   e.Message,
		Details:   e.Details,
	}
}
