package model

import (
	"time"

	"github.com/google/uuid"
)

type Analysis struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId    uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentId  uuid.UUID `gorm:"type:uuid;not null;index"`
	RequestedBy uuid.UUID `gorm:"type:uuid;not null"`
	Status      string    `gorm:"type:varchar(50);not null;index"`
	ResultURL   string    `gorm:"type:text"`
	Error       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	CompletedAt *time.Time
}

func (Analysis) TableName() string {
	return "analyses"
}
