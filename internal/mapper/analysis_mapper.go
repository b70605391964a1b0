package mapper

import (
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/model"
)

type AnalysisMapper struct{}

func NewAnalysisMapper() *AnalysisMapper {
	return &AnalysisMapper{}
}

func (m *AnalysisMapper) ToEntity(a *model.Analysis) *entity.Analysis {
	if a == nil {
		return nil
	}
	return &entity.Analysis{
		Id:          a.Id,
		TenantId:    a.TenantId,
		DocumentId:  a.DocumentId,
		RequestedBy: a.RequestedBy,
		Status:      entity.AnalysisStatus(a.Status),
		ResultURL:   a.ResultURL,
		Error:       a.Error,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
}

func (m *AnalysisMapper) ToModel(a *entity.Analysis) *model.Analysis {
	if a == nil {
		return nil
	}
	return &model.Analysis{
		Id:          a.Id,
		TenantId:    a.TenantId,
		DocumentId:  a.DocumentId,
		RequestedBy: a.RequestedBy,
		Status:      string(a.Status),
		ResultURL:   a.ResultURL,
		Error:       a.Error,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
}
