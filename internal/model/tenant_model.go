package model

import (
	"time"

	"github.com/google/uuid"
)

// TenantProfile is the subscription side of a tenant. A NULL limit column
// means the limit was never provisioned.
type TenantProfile struct {
	TenantId            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string    `gorm:"type:varchar(255);not null"`
	OwnerEmail          string    `gorm:"type:varchar(255);not null"`
	Tier                string    `gorm:"type:tenant_tier;not null;index"`
	TrialEndDate        time.Time
	MaxDocuments        *int
	MaxAnalysesPerMonth *int
	MaxTeamMembers      *int
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (TenantProfile) TableName() string {
	return "tenant_profiles"
}

type TenantUsage struct {
	TenantId          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Documents         int       `gorm:"not null;default:0"`
	AnalysesThisMonth int       `gorm:"not null;default:0"`
	TeamMembers       int       `gorm:"not null;default:0"`
	PeriodStart       time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (TenantUsage) TableName() string {
	return "tenant_usage"
}
