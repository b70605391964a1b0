package memory

import (
	"context"
	"testing"
	"time"

	"far-compliance-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageCacheRoundTripAndInvalidate(t *testing.T) {
	c := NewUsageCache()
	ctx := context.Background()
	tenant := uuid.New()

	_, ok := c.Get(ctx, tenant)
	assert.False(t, ok)

	counters := &entity.UsageCounters{TenantId: tenant, Documents: 3, PeriodStart: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}
	require.True(t, c.Set(ctx, counters, c.Generation(ctx, tenant)))

	// Mutating the caller's copy must not leak into the cache.
	counters.Documents = 99

	got, ok := c.Get(ctx, tenant)
	require.True(t, ok)
	assert.Equal(t, 3, got.Documents)

	c.Invalidate(ctx, tenant)
	_, ok = c.Get(ctx, tenant)
	assert.False(t, ok)
}

func TestUsageCacheIgnoresNil(t *testing.T) {
	c := NewUsageCache()
	assert.False(t, c.Set(context.Background(), nil, 0))
	_, ok := c.Get(context.Background(), uuid.Nil)
	assert.False(t, ok)
}

func TestUsageCacheRejectsSnapshotFromBeforeInvalidate(t *testing.T) {
	c := NewUsageCache()
	ctx := context.Background()
	tenant := uuid.New()

	gen := c.Generation(ctx, tenant)
	c.Invalidate(ctx, tenant)

	assert.False(t, c.Set(ctx, &entity.UsageCounters{TenantId: tenant, Documents: 4}, gen))
	_, ok := c.Get(ctx, tenant)
	assert.False(t, ok)

	assert.True(t, c.Set(ctx, &entity.UsageCounters{TenantId: tenant, Documents: 5}, c.Generation(ctx, tenant)))
	got, ok := c.Get(ctx, tenant)
	require.True(t, ok)
	assert.Equal(t, 5, got.Documents)
}
