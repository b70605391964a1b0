package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/repository/contract"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ITeamService interface {
	ListMembers(ctx context.Context, tenantId uuid.UUID) ([]*dto.TeamMemberResponse, error)
	AddMember(ctx context.Context, tenantId uuid.UUID, req *dto.AddTeamMemberRequest) (*dto.TeamMemberResponse, error)
	RemoveMember(ctx context.Context, tenantId, memberId uuid.UUID) error
}

type teamService struct {
	uowFactory   unitofwork.RepositoryFactory
	usageService IUsageService
	logger       logger.ILogger
}

func NewTeamService(uowFactory unitofwork.RepositoryFactory, usageService IUsageService, logger logger.ILogger) ITeamService {
	return &teamService{
		uowFactory:   uowFactory,
		usageService: usageService,
		logger:       logger,
	}
}

func (s *teamService) ListMembers(ctx context.Context, tenantId uuid.UUID) ([]*dto.TeamMemberResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	members, err := uow.TeamMemberRepository().FindAll(ctx, specification.TenantOwnedBy{TenantID: tenantId})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.TeamMemberResponse, 0, len(members))
	for _, m := range members {
		res = append(res, toTeamMemberResponse(m))
	}
	return res, nil
}

func (s *teamService) AddMember(ctx context.Context, tenantId uuid.UUID, req *dto.AddTeamMemberRequest) (*dto.TeamMemberResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.TeamMemberRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.ByEmail{Email: email},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, dto.ErrTeamMemberExists
	}

	if err := s.usageService.CheckAdmission(ctx, tenantId, entity.DimensionTeamMembers, 0); err != nil {
		return nil, err
	}

	member := &entity.TeamMember{
		Id:        uuid.New(),
		TenantId:  tenantId,
		Email:     email,
		FullName:  req.FullName,
		Role:      entity.TeamRole(req.Role),
		CreatedAt: time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.TeamMemberRepository().Create(ctx, member); err != nil {
		// A concurrent add can pass the lookup above and still hit the index.
		if errors.Is(err, contract.ErrDuplicateMember) {
			return nil, dto.ErrTeamMemberExists
		}
		return nil, err
	}
	if err := uow.UsageRepository().Increment(ctx, tenantId, entity.DimensionTeamMembers, 1); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.usageService.CountersChanged(ctx, tenantId)

	s.logger.Info("TEAM", "Team member added", map[string]interface{}{
		"tenant_id": tenantId.String(),
		"member_id": member.Id.String(),
		"role":      req.Role,
	})
	return toTeamMemberResponse(member), nil
}

func (s *teamService) RemoveMember(ctx context.Context, tenantId, memberId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	member, err := uow.TeamMemberRepository().FindOne(ctx,
		specification.ByID{ID: memberId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return err
	}
	if member == nil {
		return dto.ErrTeamMemberNotFound
	}
	if member.Role == entity.TeamRoleOwner {
		return dto.ErrOwnerCannotBeRemoved
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TeamMemberRepository().Delete(ctx, member.Id); err != nil {
		return err
	}
	if err := uow.UsageRepository().Increment(ctx, tenantId, entity.DimensionTeamMembers, -1); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	s.usageService.CountersChanged(ctx, tenantId)

	s.logger.Info("TEAM", "Team member removed", map[string]interface{}{
		"tenant_id": tenantId.String(),
		"member_id": member.Id.String(),
	})
	return nil
}

func toTeamMemberResponse(m *entity.TeamMember) *dto.TeamMemberResponse {
	return &dto.TeamMemberResponse{
		Id:        m.Id,
		Email:     m.Email,
		FullName:  m.FullName,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}
