// FILE: internal/entity/subscription_profile_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type Tier string

const (
	TierTrial        Tier = "trial"
	TierBasic        Tier = "basic"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// Unlimited marks a limit with no ceiling. It is never a count.
const Unlimited = -1

type UsageLimits struct {
	MaxDocuments        int // -1 = unlimited
	MaxAnalysesPerMonth int // -1 = unlimited
	MaxTeamMembers      int // -1 = unlimited
}

// SubscriptionProfile is provisioned and upgraded outside this service.
// UsageLimits is nil when the stored row is incomplete.
type SubscriptionProfile struct {
	TenantId     uuid.UUID
	Name         string
	OwnerEmail   string
	Tier         Tier
	TrialEndDate time.Time // only meaningful for TierTrial
	UsageLimits  *UsageLimits
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
