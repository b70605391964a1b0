package contract

import (
	"context"

	"far-compliance-be/internal/entity"

	"github.com/google/uuid"
)

// UsageCache holds counter snapshots between writes. Entries never expire on
// their own; every counter write must Invalidate the tenant.
//
// Invalidate bumps a per-tenant generation. Readers capture Generation before
// loading counters from the database and pass it to Set, which stores the
// snapshot only if no Invalidate happened in between. A negative generation
// means the cache could not tell and Set stores nothing.
type UsageCache interface {
	Get(ctx context.Context, tenantId uuid.UUID) (*entity.UsageCounters, bool)
	Generation(ctx context.Context, tenantId uuid.UUID) int64
	Set(ctx context.Context, counters *entity.UsageCounters, generation int64) bool
	Invalidate(ctx context.Context, tenantId uuid.UUID)
}
