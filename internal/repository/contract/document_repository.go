package contract

import (
	"context"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/repository/specification"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type UploadAuditRepository interface {
	Create(ctx context.Context, audit *entity.UploadAudit) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UploadAudit, error)
}
