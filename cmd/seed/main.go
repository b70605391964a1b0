package main

import (
	"context"
	"log"
	"time"

	"far-compliance-be/internal/config"
	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/logger"
	"far-compliance-be/internal/pkg/metrics"
	"far-compliance-be/internal/repository/memory"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/internal/service"
	"far-compliance-be/pkg/audit"
	"far-compliance-be/pkg/database"

	"github.com/google/uuid"
)

type demoTenant struct {
	slug       string
	name       string
	ownerEmail string
	tier       entity.Tier
	trialDays  int
}

var demoTenants = []demoTenant{
	{slug: "acme", name: "Acme Contracting", ownerEmail: "owner@acme.test", tier: entity.TierTrial, trialDays: 5},
	{slug: "northwind", name: "Northwind Federal", ownerEmail: "owner@northwind.test", tier: entity.TierBasic},
	{slug: "globex", name: "Globex Defense", ownerEmail: "owner@globex.test", tier: entity.TierEnterprise},
}

// demoTenantID is stable so the seeder can be re-run.
func demoTenantID(slug string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("far-compliance/demo/"+slug))
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	nop := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	usageService := service.NewUsageService(
		uowFactory,
		memory.NewUsageCache(),
		audit.NewEventPublisher(nil, nop),
		metrics.NewCollector(),
		nop,
		cfg.Usage.WarningThreshold,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Println("Seeding demo tenants...")
	for _, t := range demoTenants {
		id := demoTenantID(t.slug)
		status, err := usageService.ProvisionTenant(ctx, dto.ProvisionTenantRequest{
			TenantId:   id,
			Name:       t.name,
			OwnerEmail: t.ownerEmail,
			Tier:       string(t.tier),
			TrialDays:  t.trialDays,
		})
		if err != nil {
			log.Fatalf("Error: Failed to provision %s: %v", t.slug, err)
		}

		added, err := seedOwner(ctx, uowFactory, id, t.ownerEmail)
		if err != nil {
			log.Fatalf("Error: Failed to seed owner for %s: %v", t.slug, err)
		}
		if added {
			usageService.CountersChanged(ctx, id)
		}
		log.Printf("Tenant %s (%s) ready as %s", t.name, id, status.Tier)
	}

	log.Println("✅ Demo tenants seeded")
}

// seedOwner adds the owner to the team once. Owners count against the
// team_members dimension like everyone else.
func seedOwner(ctx context.Context, uowFactory unitofwork.RepositoryFactory, tenantId uuid.UUID, email string) (bool, error) {
	uow := uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.TeamMemberRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.ByEmail{Email: email},
	)
	if err != nil || existing != nil {
		return false, err
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	owner := &entity.TeamMember{
		Id:        uuid.New(),
		TenantId:  tenantId,
		Email:     email,
		FullName:  "Account Owner",
		Role:      entity.TeamRoleOwner,
		CreatedAt: time.Now(),
	}
	if err := uow.TeamMemberRepository().Create(ctx, owner); err != nil {
		return false, err
	}
	if err := uow.UsageRepository().Increment(ctx, tenantId, entity.DimensionTeamMembers, 1); err != nil {
		return false, err
	}
	return true, uow.Commit()
}
