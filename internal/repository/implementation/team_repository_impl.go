package implementation

import (
	"context"
	"errors"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/mapper"
	"far-compliance-be/internal/model"
	"far-compliance-be/internal/repository/contract"
	"far-compliance-be/internal/repository/scope"
	"far-compliance-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamMemberRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TeamMapper
}

func NewTeamMemberRepository(db *gorm.DB) contract.TeamMemberRepository {
	return &TeamMemberRepositoryImpl{
		db:     db,
		mapper: mapper.NewTeamMapper(),
	}
}

func (r *TeamMemberRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// translateMemberError turns a (tenant_id, email) unique violation into
// contract.ErrDuplicateMember.
func translateMemberError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return contract.ErrDuplicateMember
	}
	return err
}

func (r *TeamMemberRepositoryImpl) Create(ctx context.Context, member *entity.TeamMember) error {
	m := r.mapper.MemberToModel(member)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateMemberError(err)
	}
	*member = *r.mapper.MemberToEntity(m)
	return nil
}

func (r *TeamMemberRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TeamMember{}, "id = ?", id).Error
}

func (r *TeamMemberRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TeamMember, error) {
	var m model.TeamMember
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MemberToEntity(&m), nil
}

func (r *TeamMemberRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TeamMember, error) {
	var models []*model.TeamMember
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OldestFirst), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TeamMember, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MemberToEntity(m)
	}
	return entities, nil
}
