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
	"far-compliance-be/internal/repository/contract"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/pkg/audit"
	"far-compliance-be/pkg/usage"

	"github.com/google/uuid"
)

const defaultTrialDays = 14

// IUsageService is the only writer of usage counters besides transactions
// that call CountersChanged after commit.
type IUsageService interface {
	GetUsageStatus(ctx context.Context, tenantId uuid.UUID) (*dto.UsageStatusResponse, error)
	Admission(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension) (*dto.AdmissionResponse, error)
	// CheckAdmission denies with *dto.AdmissionDeniedError. pending counts
	// actions already admitted but not yet recorded.
	CheckAdmission(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension, pending int) error
	RecordUsage(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension, delta int) error
	CountersChanged(ctx context.Context, tenantId uuid.UUID)
	ProvisionTenant(ctx context.Context, req dto.ProvisionTenantRequest) (*dto.UsageStatusResponse, error)
}

type usageService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      contract.UsageCache
	publisher  audit.Publisher
	metrics    *metrics.Collector
	logger     logger.ILogger
	threshold  int
	now        func() time.Time
}

func NewUsageService(
	uowFactory unitofwork.RepositoryFactory,
	cache contract.UsageCache,
	publisher audit.Publisher,
	metrics *metrics.Collector,
	logger logger.ILogger,
	threshold int,
) IUsageService {
	if threshold <= 0 || threshold > 100 {
		threshold = usage.DefaultWarningThreshold
	}
	return &usageService{
		uowFactory: uowFactory,
		cache:      cache,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		threshold:  threshold,
		now:        time.Now,
	}
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// snapshot loads the profile and current counters, rolling the monthly
// analysis counter over when a new month has started.
func (s *usageService) snapshot(ctx context.Context, tenantId uuid.UUID) (*entity.SubscriptionProfile, *entity.UsageCounters, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.TenantRepository().FindOneProfile(ctx, specification.TenantOwnedBy{TenantID: tenantId})
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, dto.ErrTenantNotFound
	}

	period := monthStart(s.now())
	if cached, ok := s.cache.Get(ctx, tenantId); ok && !cached.PeriodStart.Before(period) {
		return profile, cached, nil
	}

	// Captured before the read so a write that lands meanwhile keeps this
	// snapshot out of the cache.
	generation := s.cache.Generation(ctx, tenantId)

	counters, err := uow.UsageRepository().FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, nil, err
	}
	if counters == nil {
		if counters, err = uow.UsageRepository().EnsureCounters(ctx, tenantId, period); err != nil {
			return nil, nil, err
		}
	}
	if counters != nil && counters.PeriodStart.Before(period) {
		if err := uow.UsageRepository().ResetAnalysesPeriod(ctx, tenantId, period); err != nil {
			return nil, nil, err
		}
		counters.AnalysesThisMonth = 0
		counters.PeriodStart = period
	}

	s.cache.Set(ctx, counters, generation)
	return profile, counters, nil
}

func (s *usageService) GetUsageStatus(ctx context.Context, tenantId uuid.UUID) (*dto.UsageStatusResponse, error) {
	profile, counters, err := s.snapshot(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	return s.buildStatus(profile, counters), nil
}

func (s *usageService) buildStatus(profile *entity.SubscriptionProfile, counters *entity.UsageCounters) *dto.UsageStatusResponse {
	now := s.now()
	expired := usage.IsTrialExpired(profile, now)

	res := &dto.UsageStatusResponse{
		TenantId:          profile.TenantId,
		Tier:              string(profile.Tier),
		Usage:             make(map[string]dto.DimensionUsage, len(entity.Dimensions)),
		ApproachingLimits: usage.IsApproachingLimits(profile, counters, s.threshold),
		LimitReached:      usage.HasReachedAnyLimit(profile, counters),
		UpgradeAvailable:  profile.Tier != entity.TierEnterprise,
	}
	for _, dim := range entity.Dimensions {
		d := usage.Check(profile, counters, dim)
		res.Usage[string(dim)] = dto.DimensionUsage{
			Used:       d.Used,
			Limit:      d.Limit,
			Percentage: usage.UsagePercentage(profile, counters, dim),
			CanUse:     d.Allowed && !expired,
		}
	}
	if profile.Tier == entity.TierTrial {
		res.Trial = &dto.TrialStatus{
			EndsAt:        profile.TrialEndDate,
			DaysRemaining: usage.DaysRemainingInTrial(profile, now),
			Urgency:       string(usage.TrialUrgency(profile, now)),
			Expired:       expired,
		}
	}
	return res
}

func (s *usageService) Admission(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension) (*dto.AdmissionResponse, error) {
	if !dimension.Valid() {
		return nil, dto.ErrInvalidDimension
	}
	profile, counters, err := s.snapshot(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	d := usage.Check(profile, counters, dimension)
	return &dto.AdmissionResponse{
		Dimension: string(dimension),
		Allowed:   d.Allowed && !usage.IsTrialExpired(profile, s.now()),
		Used:      d.Used,
		Limit:     d.Limit,
	}, nil
}

func (s *usageService) CheckAdmission(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension, pending int) error {
	if !dimension.Valid() {
		return dto.ErrInvalidDimension
	}
	profile, counters, err := s.snapshot(ctx, tenantId)
	if err != nil {
		return err
	}

	adjusted := *counters
	switch dimension {
	case entity.DimensionDocuments:
		adjusted.Documents += pending
	case entity.DimensionAnalyses:
		adjusted.AnalysesThisMonth += pending
	case entity.DimensionTeamMembers:
		adjusted.TeamMembers += pending
	}

	d := usage.Check(profile, &adjusted, dimension)
	reason := ""
	switch {
	case usage.IsTrialExpired(profile, s.now()):
		reason = dto.ReasonTrialExpired
	case !d.Allowed && profile.UsageLimits == nil:
		reason = dto.ReasonNotProvisioned
	case !d.Allowed:
		reason = dto.ReasonLimitReached
	}

	allowed := reason == ""
	s.metrics.ObserveAdmission(string(dimension), allowed)
	if allowed {
		return nil
	}

	s.logger.Info("USAGE", "Admission denied", map[string]interface{}{
		"tenant_id": tenantId.String(),
		"dimension": string(dimension),
		"used":      d.Used,
		"limit":     d.Limit,
		"reason":    reason,
	})
	s.publisher.PublishAdmissionDenied(ctx, tenantId, string(dimension), d.Used, d.Limit, reason)
	return &dto.AdmissionDeniedError{
		Dimension: string(dimension),
		Limit:     d.Limit,
		Used:      d.Used,
		Reason:    reason,
	}
}

func (s *usageService) RecordUsage(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension, delta int) error {
	if !dimension.Valid() {
		return dto.ErrInvalidDimension
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.UsageRepository().Increment(ctx, tenantId, dimension, delta)
	// Invalidate even on error: the write may have landed.
	s.CountersChanged(ctx, tenantId)
	if err != nil {
		return fmt.Errorf("record %s usage: %w", dimension, err)
	}
	return nil
}

// CountersChanged drops the cached snapshot and warns the tenant's
// subscribers once a finite dimension crosses the warning threshold.
func (s *usageService) CountersChanged(ctx context.Context, tenantId uuid.UUID) {
	s.cache.Invalidate(ctx, tenantId)

	profile, counters, err := s.snapshot(ctx, tenantId)
	if err != nil {
		if !errors.Is(err, dto.ErrTenantNotFound) {
			s.logger.Warn("USAGE", "Failed to reload counters after write", map[string]interface{}{
				"tenant_id": tenantId.String(),
				"error":     err.Error(),
			})
		}
		return
	}
	if !usage.IsApproachingLimits(profile, counters, s.threshold) {
		return
	}
	percentages := make(map[string]int, len(entity.Dimensions))
	for _, dim := range entity.Dimensions {
		percentages[string(dim)] = usage.UsagePercentage(profile, counters, dim)
	}
	s.publisher.PublishUsageApproaching(ctx, tenantId, percentages)
}

func (s *usageService) ProvisionTenant(ctx context.Context, req dto.ProvisionTenantRequest) (*dto.UsageStatusResponse, error) {
	tier := entity.Tier(req.Tier)
	limits := usage.LimitsForTier(tier)
	if req.MaxDocuments != nil {
		limits.MaxDocuments = *req.MaxDocuments
	}
	if req.MaxAnalyses != nil {
		limits.MaxAnalysesPerMonth = *req.MaxAnalyses
	}
	if req.MaxMembers != nil {
		limits.MaxTeamMembers = *req.MaxMembers
	}

	now := s.now()
	profile := &entity.SubscriptionProfile{
		TenantId:    req.TenantId,
		Name:        req.Name,
		OwnerEmail:  req.OwnerEmail,
		Tier:        tier,
		UsageLimits: &limits,
	}
	if tier == entity.TierTrial {
		days := req.TrialDays
		if days == 0 {
			days = defaultTrialDays
		}
		profile.TrialEndDate = now.Add(time.Duration(days) * 24 * time.Hour)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.TenantRepository().FindOneProfile(ctx, specification.TenantOwnedBy{TenantID: req.TenantId})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		err = uow.TenantRepository().CreateProfile(ctx, profile)
	} else {
		profile.CreatedAt = existing.CreatedAt
		err = uow.TenantRepository().UpdateProfile(ctx, profile)
	}
	if err != nil {
		return nil, err
	}
	if _, err := uow.UsageRepository().EnsureCounters(ctx, req.TenantId, monthStart(now)); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, req.TenantId)
	s.logger.Info("USAGE", "Tenant provisioned", map[string]interface{}{
		"tenant_id": req.TenantId.String(),
		"tier":      req.Tier,
	})
	return s.GetUsageStatus(ctx, req.TenantId)
}
