package contract

import (
	"context"
	"time"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TenantRepository interface {
	CreateProfile(ctx context.Context, profile *entity.SubscriptionProfile) error
	UpdateProfile(ctx context.Context, profile *entity.SubscriptionProfile) error
	FindOneProfile(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionProfile, error)
	FindAllProfiles(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionProfile, error)
}

// UsageRepository owns the counter rows. Increment clamps at zero so a
// duplicate decrement cannot drive a counter negative.
type UsageRepository interface {
	EnsureCounters(ctx context.Context, tenantId uuid.UUID, periodStart time.Time) (*entity.UsageCounters, error)
	FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.UsageCounters, error)
	Increment(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension, delta int) error
	ResetAnalysesPeriod(ctx context.Context, tenantId uuid.UUID, periodStart time.Time) error
}
