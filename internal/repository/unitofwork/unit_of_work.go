package unitofwork

import (
	"context"

	"far-compliance-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TenantRepository() contract.TenantRepository
	UsageRepository() contract.UsageRepository
	DocumentRepository() contract.DocumentRepository
	UploadAuditRepository() contract.UploadAuditRepository
	TeamMemberRepository() contract.TeamMemberRepository
	AnalysisRepository() contract.AnalysisRepository
}
