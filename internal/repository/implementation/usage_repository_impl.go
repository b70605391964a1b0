package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/mapper"
	"far-compliance-be/internal/model"
	"far-compliance-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TenantMapper
}

func NewUsageRepository(db *gorm.DB) contract.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewTenantMapper(),
	}
}

var counterColumns = map[entity.Dimension]string{
	entity.DimensionDocuments:   "documents",
	entity.DimensionAnalyses:    "analyses_this_month",
	entity.DimensionTeamMembers: "team_members",
}

func (r *UsageRepositoryImpl) EnsureCounters(ctx context.Context, tenantId uuid.UUID, periodStart time.Time) (*entity.UsageCounters, error) {
	m := model.TenantUsage{TenantId: tenantId, PeriodStart: periodStart}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
		return nil, err
	}
	return r.FindByTenant(ctx, tenantId)
}

func (r *UsageRepositoryImpl) FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.UsageCounters, error) {
	var m model.TenantUsage
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UsageToEntity(&m), nil
}

func (r *UsageRepositoryImpl) Increment(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension, delta int) error {
	column, ok := counterColumns[dimension]
	if !ok {
		return fmt.Errorf("unknown usage dimension %q", dimension)
	}

	res := r.db.WithContext(ctx).
		Model(&model.TenantUsage{}).
		Where("tenant_id = ?", tenantId).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("GREATEST(%s + ?, 0)", column), delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("usage counters for tenant %s not provisioned", tenantId)
	}
	return nil
}

func (r *UsageRepositoryImpl) ResetAnalysesPeriod(ctx context.Context, tenantId uuid.UUID, periodStart time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.TenantUsage{}).
		Where("tenant_id = ? AND period_start < ?", tenantId, periodStart).
		UpdateColumns(map[string]interface{}{
			"analyses_this_month": 0,
			"period_start":        periodStart,
		}).Error
}
