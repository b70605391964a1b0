package entity

import (
	"time"

	"github.com/google/uuid"
)

type TeamRole string

const (
	TeamRoleOwner    TeamRole = "owner"
	TeamRoleAnalyst  TeamRole = "analyst"
	TeamRoleReviewer TeamRole = "reviewer"
)

type TeamMember struct {
	Id        uuid.UUID
	TenantId  uuid.UUID
	Email     string
	FullName  string
	Role      TeamRole
	CreatedAt time.Time
}
