package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId     uuid.UUID `gorm:"type:uuid;not null;index"`
	UploadedBy   uuid.UUID `gorm:"type:uuid;not null"`
	OriginalName string    `gorm:"type:varchar(255);not null"`
	StoredName   string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	MimeType     string    `gorm:"type:varchar(255);not null"`
	SizeBytes    int64     `gorm:"not null"`
	StoragePath  string    `gorm:"type:text;not null"`
	PublicURL    string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}

// UploadAudit is written for every file offered, accepted or not.
type UploadAudit struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null"`
	CandidateId uuid.UUID      `gorm:"type:uuid;not null"`
	FileName    string         `gorm:"type:text;not null"`
	MimeType    string         `gorm:"type:varchar(255)"`
	SizeBytes   int64          `gorm:"not null"`
	Outcome     string         `gorm:"type:varchar(50);not null;index"`
	Reasons     datatypes.JSON `gorm:"type:jsonb"`
	DocumentId  *uuid.UUID     `gorm:"type:uuid"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (UploadAudit) TableName() string {
	return "upload_audits"
}
