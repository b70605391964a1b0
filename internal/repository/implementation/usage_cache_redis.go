package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	usageCachePrefix   = "usage:counters:"
	usageVersionPrefix = "usage:version:"
)

// setIfCurrent writes the snapshot only while the tenant's version key still
// holds the generation the reader started from.
var setIfCurrent = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if not v then v = '0' end
if v ~= ARGV[2] then return 0 end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// RedisUsageCache shares counter snapshots across API replicas. Any redis
// failure reads as a miss so admission falls through to the database.
type RedisUsageCache struct {
	client *redis.Client
}

func NewRedisUsageCache(client *redis.Client) contract.UsageCache {
	return &RedisUsageCache{client: client}
}

func (c *RedisUsageCache) key(tenantId uuid.UUID) string {
	return usageCachePrefix + tenantId.String()
}

func (c *RedisUsageCache) versionKey(tenantId uuid.UUID) string {
	return usageVersionPrefix + tenantId.String()
}

func (c *RedisUsageCache) Get(ctx context.Context, tenantId uuid.UUID) (*entity.UsageCounters, bool) {
	raw, err := c.client.Get(ctx, c.key(tenantId)).Bytes()
	if err != nil {
		return nil, false
	}
	var counters entity.UsageCounters
	if err := json.Unmarshal(raw, &counters); err != nil {
		return nil, false
	}
	return &counters, true
}

func (c *RedisUsageCache) Generation(ctx context.Context, tenantId uuid.UUID) int64 {
	v, err := c.client.Get(ctx, c.versionKey(tenantId)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		return -1
	}
	return v
}

func (c *RedisUsageCache) Set(ctx context.Context, counters *entity.UsageCounters, generation int64) bool {
	if counters == nil || generation < 0 {
		return false
	}
	raw, err := json.Marshal(counters)
	if err != nil {
		return false
	}
	stored, err := setIfCurrent.Run(ctx, c.client,
		[]string{c.key(counters.TenantId), c.versionKey(counters.TenantId)},
		raw, strconv.FormatInt(generation, 10),
	).Int()
	return err == nil && stored == 1
}

func (c *RedisUsageCache) Invalidate(ctx context.Context, tenantId uuid.UUID) {
	_, _ = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(tenantId))
		pipe.Del(ctx, c.key(tenantId))
		return nil
	})
}
