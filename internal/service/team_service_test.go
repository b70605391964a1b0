package service

import (
	"context"
	"testing"
	"time"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/pkg/metrics"
	"far-compliance-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeamFixture() (*fakeStore, ITeamService) {
	store := newFakeStore()
	nop := logger.NewNopLogger()
	usageSvc := NewUsageService(&fakeFactory{store}, memory.NewUsageCache(), &recordingPublisher{}, metrics.NewCollector(), nop, 80)
	return store, NewTeamService(&fakeFactory{store}, usageSvc, nop)
}

func TestAddMemberIncrementsCounter(t *testing.T) {
	store, svc := newTeamFixture()
	tenant := store.seedTenant(entity.TierBasic, entity.UsageLimits{MaxDocuments: 50, MaxAnalysesPerMonth: 25, MaxTeamMembers: 3}, entity.UsageCounters{})

	res, err := svc.AddMember(context.Background(), tenant, &dto.AddTeamMemberRequest{
		Email:    " Analyst@Acme.test ",
		FullName: "Dana Reyes",
		Role:     "analyst",
	})
	require.NoError(t, err)

	assert.Equal(t, "analyst@acme.test", res.Email)
	assert.Equal(t, 1, store.counters(tenant).TeamMembers)

	_, err = svc.AddMember(context.Background(), tenant, &dto.AddTeamMemberRequest{Email: "analyst@acme.test", Role: "reviewer"})
	assert.ErrorIs(t, err, dto.ErrTeamMemberExists)
	assert.Equal(t, 1, store.counters(tenant).TeamMembers)
}

func TestAddMemberDeniedAtLimit(t *testing.T) {
	store, svc := newTeamFixture()
	tenant := store.seedTenant(entity.TierTrial, trialLimits, entity.UsageCounters{TeamMembers: 1})

	_, err := svc.AddMember(context.Background(), tenant, &dto.AddTeamMemberRequest{Email: "second@acme.test", Role: "reviewer"})

	var denied *dto.AdmissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "team_members", denied.Dimension)
	assert.Empty(t, store.members)
}

func TestRemoveMemberDecrementsCounter(t *testing.T) {
	store, svc := newTeamFixture()
	tenant := store.seedTenant(entity.TierBasic, entity.UsageLimits{MaxDocuments: 50, MaxAnalysesPerMonth: 25, MaxTeamMembers: 3}, entity.UsageCounters{})

	added, err := svc.AddMember(context.Background(), tenant, &dto.AddTeamMemberRequest{Email: "r@acme.test", Role: "reviewer"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(context.Background(), tenant, added.Id))
	assert.Equal(t, 0, store.counters(tenant).TeamMembers)

	assert.ErrorIs(t, svc.RemoveMember(context.Background(), tenant, added.Id), dto.ErrTeamMemberNotFound)
}

func TestRemoveMemberProtectsOwnerAndTenantBoundary(t *testing.T) {
	store, svc := newTeamFixture()
	tenant := store.seedTenant(entity.TierBasic, entity.UsageLimits{MaxDocuments: 50, MaxAnalysesPerMonth: 25, MaxTeamMembers: 3}, entity.UsageCounters{TeamMembers: 1})
	owner := &entity.TeamMember{Id: uuid.New(), TenantId: tenant, Email: "owner@acme.test", Role: entity.TeamRoleOwner, CreatedAt: time.Now()}
	store.members = append(store.members, owner)

	assert.ErrorIs(t, svc.RemoveMember(context.Background(), tenant, owner.Id), dto.ErrOwnerCannotBeRemoved)
	assert.ErrorIs(t, svc.RemoveMember(context.Background(), uuid.New(), owner.Id), dto.ErrTeamMemberNotFound)
	assert.Equal(t, 1, store.counters(tenant).TeamMembers)

	members, err := svc.ListMembers(context.Background(), tenant)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner", members[0].Role)
}

func TestAddMemberRacingDuplicateIsConflict(t *testing.T) {
	store, svc := newTeamFixture()
	tenant := store.seedTenant(entity.TierBasic, entity.UsageLimits{MaxDocuments: 50, MaxAnalysesPerMonth: 25, MaxTeamMembers: 3}, entity.UsageCounters{})

	// The other request commits between our lookup and our insert.
	store.beforeMemberCreate = func() {
		store.mu.Lock()
		defer store.mu.Unlock()
		store.members = append(store.members, &entity.TeamMember{Id: uuid.New(), TenantId: tenant, Email: "analyst@acme.test", Role: entity.TeamRoleAnalyst})
		store.beforeMemberCreate = nil
	}

	_, err := svc.AddMember(context.Background(), tenant, &dto.AddTeamMemberRequest{Email: "analyst@acme.test", Role: "analyst"})
	assert.ErrorIs(t, err, dto.ErrTeamMemberExists)
	assert.Equal(t, 0, store.counters(tenant).TeamMembers)
}
