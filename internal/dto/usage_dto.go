// DTOs for usage limits, admission and trial status
package dto

import (
	"time"

	"github.com/google/uuid"
)

// DimensionUsage is one metered dimension as the dashboard shows it.
type DimensionUsage struct {
	Used       int  `json:"used"`
	Limit      int  `json:"limit"` // -1 = unlimited
	Percentage int  `json:"percentage"`
	CanUse     bool `json:"can_use"`
}

type TrialStatus struct {
	EndsAt        time.Time `json:"ends_at"`
	DaysRemaining int       `json:"days_remaining"`
	Urgency       string    `json:"urgency"`
	Expired       bool      `json:"expired"`
}

// UsageStatusResponse is returned by GET /api/usage/status
type UsageStatusResponse struct {
	TenantId          uuid.UUID                 `json:"tenant_id"`
	Tier              string                    `json:"tier"`
	Usage             map[string]DimensionUsage `json:"usage"`
	ApproachingLimits bool                      `json:"approaching_limits"`
	LimitReached      bool                      `json:"limit_reached"`
	Trial             *TrialStatus              `json:"trial,omitempty"`
	UpgradeAvailable  bool                      `json:"upgrade_available"`
}

// AdmissionResponse is returned by GET /api/usage/admission/:dimension
type AdmissionResponse struct {
	Dimension string `json:"dimension"`
	Allowed   bool   `json:"allowed"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
}

type ProvisionTenantRequest struct {
	TenantId     uuid.UUID `json:"tenant_id" validate:"required"`
	Name         string    `json:"name" validate:"required,max=255"`
	OwnerEmail   string    `json:"owner_email" validate:"required,email"`
	Tier         string    `json:"tier" validate:"required,oneof=trial basic professional enterprise"`
	TrialDays    int       `json:"trial_days" validate:"gte=0,lte=90"`
	MaxDocuments *int      `json:"max_documents,omitempty" validate:"omitempty,gte=-1"`
	MaxAnalyses  *int      `json:"max_analyses_per_month,omitempty" validate:"omitempty,gte=-1"`
	MaxMembers   *int      `json:"max_team_members,omitempty" validate:"omitempty,gte=-1"`
}

type TenantSummaryResponse struct {
	TenantId     uuid.UUID  `json:"tenant_id"`
	Name         string     `json:"name"`
	OwnerEmail   string     `json:"owner_email"`
	Tier         string     `json:"tier"`
	TrialEndDate *time.Time `json:"trial_end_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
