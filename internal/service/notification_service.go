package service

import (
	"context"
	"time"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/pkg/mailer"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/pkg/usage"
)

// NotificationSummary counts what one run of the reminder job sent.
type NotificationSummary struct {
	TrialReminders int
	UsageWarnings  int
	Failures       int
}

// INotificationService e-mails tenant owners about trial expiry and about
// dimensions nearing their limit. It is run by cmd/trial_reminder.
type INotificationService interface {
	SendTrialReminders(ctx context.Context) (NotificationSummary, error)
	SendUsageWarnings(ctx context.Context) (NotificationSummary, error)
}

type notificationService struct {
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
	threshold  int
	now        func() time.Time
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, mailer mailer.IEmailService, logger logger.ILogger, threshold int) INotificationService {
	if threshold <= 0 || threshold > 100 {
		threshold = usage.DefaultWarningThreshold
	}
	return &notificationService{
		uowFactory: uowFactory,
		mailer:     mailer,
		logger:     logger,
		threshold:  threshold,
		now:        time.Now,
	}
}

// SendTrialReminders mails every trial tenant whose urgency is warning or
// urgent. Expired trials are skipped.
func (s *notificationService) SendTrialReminders(ctx context.Context) (NotificationSummary, error) {
	var summary NotificationSummary

	uow := s.uowFactory.NewUnitOfWork(ctx)
	profiles, err := uow.TenantRepository().FindAllProfiles(ctx, specification.ByTier{Tier: string(entity.TierTrial)})
	if err != nil {
		return summary, err
	}

	now := s.now()
	for _, p := range profiles {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if usage.IsTrialExpired(p, now) {
			continue
		}
		urgency := usage.TrialUrgency(p, now)
		if urgency == usage.UrgencySafe || p.OwnerEmail == "" {
			continue
		}

		days := usage.DaysRemainingInTrial(p, now)
		if err := s.mailer.SendTrialReminder(p.OwnerEmail, p.Name, days, string(urgency)); err != nil {
			summary.Failures++
			s.logger.Error("NOTIFY", "Failed to send trial reminder", map[string]interface{}{
				"tenant_id": p.TenantId.String(),
				"error":     err.Error(),
			})
			continue
		}
		summary.TrialReminders++
	}

	s.logger.Info("NOTIFY", "Trial reminders sent", map[string]interface{}{
		"sent":     summary.TrialReminders,
		"failures": summary.Failures,
	})
	return summary, nil
}

func (s *notificationService) SendUsageWarnings(ctx context.Context) (NotificationSummary, error) {
	var summary NotificationSummary

	uow := s.uowFactory.NewUnitOfWork(ctx)
	profiles, err := uow.TenantRepository().FindAllProfiles(ctx)
	if err != nil {
		return summary, err
	}

	for _, p := range profiles {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		counters, err := uow.UsageRepository().FindByTenant(ctx, p.TenantId)
		if err != nil {
			return summary, err
		}
		if counters == nil || p.OwnerEmail == "" {
			continue
		}
		if counters.PeriodStart.Before(monthStart(s.now())) {
			counters.AnalysesThisMonth = 0
		}
		if !usage.IsApproachingLimits(p, counters, s.threshold) {
			continue
		}

		percentages := make(map[string]int, len(entity.Dimensions))
		for _, dim := range entity.Dimensions {
			percentages[string(dim)] = usage.UsagePercentage(p, counters, dim)
		}
		if err := s.mailer.SendUsageWarning(p.OwnerEmail, p.Name, percentages); err != nil {
			summary.Failures++
			s.logger.Error("NOTIFY", "Failed to send usage warning", map[string]interface{}{
				"tenant_id": p.TenantId.String(),
				"error":     err.Error(),
			})
			continue
		}
		summary.UsageWarnings++
	}
	return summary, nil
}
