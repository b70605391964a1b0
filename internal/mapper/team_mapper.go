package mapper

import (
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/model"
)

type TeamMapper struct{}

func NewTeamMapper() *TeamMapper {
	return &TeamMapper{}
}

func (m *TeamMapper) MemberToEntity(t *model.TeamMember) *entity.TeamMember {
	if t == nil {
		return nil
	}
	return &entity.TeamMember{
		Id:        t.Id,
		TenantId:  t.TenantId,
		Email:     t.Email,
		FullName:  t.FullName,
		Role:      entity.TeamRole(t.Role),
		CreatedAt: t.CreatedAt,
	}
}

func (m *TeamMapper) MemberToModel(t *entity.TeamMember) *model.TeamMember {
	if t == nil {
		return nil
	}
	return &model.TeamMember{
		Id:        t.Id,
		TenantId:  t.TenantId,
		Email:     t.Email,
		FullName:  t.FullName,
		Role:      string(t.Role),
		CreatedAt: t.CreatedAt,
	}
}
