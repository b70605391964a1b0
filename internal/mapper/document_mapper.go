package mapper

import (
	"encoding/json"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:           d.Id,
		TenantId:     d.TenantId,
		UploadedBy:   d.UploadedBy,
		OriginalName: d.OriginalName,
		StoredName:   d.StoredName,
		MimeType:     d.MimeType,
		SizeBytes:    d.SizeBytes,
		StoragePath:  d.StoragePath,
		PublicURL:    d.PublicURL,
		CreatedAt:    d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:           d.Id,
		TenantId:     d.TenantId,
		UploadedBy:   d.UploadedBy,
		OriginalName: d.OriginalName,
		StoredName:   d.StoredName,
		MimeType:     d.MimeType,
		SizeBytes:    d.SizeBytes,
		StoragePath:  d.StoragePath,
		PublicURL:    d.PublicURL,
		CreatedAt:    d.CreatedAt,
	}
}

func (m *DocumentMapper) AuditToEntity(a *model.UploadAudit) *entity.UploadAudit {
	if a == nil {
		return nil
	}
	var reasons []string
	if len(a.Reasons) > 0 {
		// Malformed JSON leaves reasons empty; the outcome column still holds.
		_ = json.Unmarshal(a.Reasons, &reasons)
	}
	return &entity.UploadAudit{
		Id:          a.Id,
		TenantId:    a.TenantId,
		UserId:      a.UserId,
		CandidateId: a.CandidateId,
		FileName:    a.FileName,
		MimeType:    a.MimeType,
		SizeBytes:   a.SizeBytes,
		Outcome:     entity.UploadOutcome(a.Outcome),
		Reasons:     reasons,
		DocumentId:  a.DocumentId,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *DocumentMapper) AuditToModel(a *entity.UploadAudit) *model.UploadAudit {
	if a == nil {
		return nil
	}
	reasons := a.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	raw, _ := json.Marshal(reasons)
	return &model.UploadAudit{
		Id:          a.Id,
		TenantId:    a.TenantId,
		UserId:      a.UserId,
		CandidateId: a.CandidateId,
		FileName:    a.FileName,
		MimeType:    a.MimeType,
		SizeBytes:   a.SizeBytes,
		Outcome:     string(a.Outcome),
		Reasons:     datatypes.JSON(raw),
		DocumentId:  a.DocumentId,
		CreatedAt:   a.CreatedAt,
	}
}
