package model

import (
	"time"

	"github.com/google/uuid"
)

type TeamMember struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_tenant_email"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_team_tenant_email"`
	FullName  string    `gorm:"type:varchar(255)"`
	Role      string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
