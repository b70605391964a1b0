package memory

import (
	"context"
	"sync"
	"time"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// UsageCache is process local. Writes made by another replica never reach it,
// so it is only correct for a single API instance.
type UsageCache struct {
	cache       *cache.Cache
	mu          sync.Mutex
	generations map[uuid.UUID]int64
}

// NewUsageCache never expires entries; freshness comes from Invalidate on
// every counter write.
func NewUsageCache() contract.UsageCache {
	return &UsageCache{
		cache:       cache.New(cache.NoExpiration, 10*time.Minute),
		generations: make(map[uuid.UUID]int64),
	}
}

func (r *UsageCache) Get(_ context.Context, tenantId uuid.UUID) (*entity.UsageCounters, bool) {
	if x, found := r.cache.Get(tenantId.String()); found {
		snapshot := x.(entity.UsageCounters)
		return &snapshot, true
	}
	return nil, false
}

func (r *UsageCache) Generation(_ context.Context, tenantId uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[tenantId]
}

func (r *UsageCache) Set(_ context.Context, counters *entity.UsageCounters, generation int64) bool {
	if counters == nil || generation < 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generations[counters.TenantId] != generation {
		return false
	}
	r.cache.Set(counters.TenantId.String(), *counters, cache.NoExpiration)
	return true
}

func (r *UsageCache) Invalidate(_ context.Context, tenantId uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[tenantId]++
	r.cache.Delete(tenantId.String())
}
