package contract

import (
	"context"
	"errors"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrDuplicateMember is returned by Create when the tenant already has a
// member with that email.
var ErrDuplicateMember = errors.New("team member already exists")

type TeamMemberRepository interface {
	Create(ctx context.Context, member *entity.TeamMember) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TeamMember, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TeamMember, error)
}

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *entity.Analysis) error
	Update(ctx context.Context, analysis *entity.Analysis) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analysis, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
