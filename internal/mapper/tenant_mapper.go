package mapper

import (
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/model"
)

type TenantMapper struct{}

func NewTenantMapper() *TenantMapper {
	return &TenantMapper{}
}

// ProfileToEntity leaves UsageLimits nil unless every limit column is set,
// so a half-provisioned tenant is denied rather than guessed at.
func (m *TenantMapper) ProfileToEntity(p *model.TenantProfile) *entity.SubscriptionProfile {
	if p == nil {
		return nil
	}
	e := &entity.SubscriptionProfile{
		TenantId:     p.TenantId,
		Name:         p.Name,
		OwnerEmail:   p.OwnerEmail,
		Tier:         entity.Tier(p.Tier),
		TrialEndDate: p.TrialEndDate,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.MaxDocuments != nil && p.MaxAnalysesPerMonth != nil && p.MaxTeamMembers != nil {
		e.UsageLimits = &entity.UsageLimits{
			MaxDocuments:        *p.MaxDocuments,
			MaxAnalysesPerMonth: *p.MaxAnalysesPerMonth,
			MaxTeamMembers:      *p.MaxTeamMembers,
		}
	}
	return e
}

func (m *TenantMapper) ProfileToModel(e *entity.SubscriptionProfile) *model.TenantProfile {
	if e == nil {
		return nil
	}
	p := &model.TenantProfile{
		TenantId:     e.TenantId,
		Name:         e.Name,
		OwnerEmail:   e.OwnerEmail,
		Tier:         string(e.Tier),
		TrialEndDate: e.TrialEndDate,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if l := e.UsageLimits; l != nil {
		docs, analyses, members := l.MaxDocuments, l.MaxAnalysesPerMonth, l.MaxTeamMembers
		p.MaxDocuments = &docs
		p.MaxAnalysesPerMonth = &analyses
		p.MaxTeamMembers = &members
	}
	return p
}

func (m *TenantMapper) UsageToEntity(u *model.TenantUsage) *entity.UsageCounters {
	if u == nil {
		return nil
	}
	return &entity.UsageCounters{
		TenantId:          u.TenantId,
		Documents:         u.Documents,
		AnalysesThisMonth: u.AnalysesThisMonth,
		TeamMembers:       u.TeamMembers,
		PeriodStart:       u.PeriodStart,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (m *TenantMapper) UsageToModel(e *entity.UsageCounters) *model.TenantUsage {
	if e == nil {
		return nil
	}
	return &model.TenantUsage{
		TenantId:          e.TenantId,
		Documents:         e.Documents,
		AnalysesThisMonth: e.AnalysesThisMonth,
		TeamMembers:       e.TeamMembers,
		PeriodStart:       e.PeriodStart,
		UpdatedAt:         e.UpdatedAt,
	}
}
