package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/repository/contract"
	"far-compliance-be/internal/repository/specification"
	"far-compliance-be/internal/repository/unitofwork"
	"far-compliance-be/pkg/storage"

	"github.com/google/uuid"
)

// fakeStore backs every fake repository. Transactions are not modelled;
// Commit only counts calls.
type fakeStore struct {
	mu sync.Mutex

	profiles map[uuid.UUID]*entity.SubscriptionProfile
	usage    map[uuid.UUID]*entity.UsageCounters
	docs     []*entity.Document
	audits   []*entity.UploadAudit
	members  []*entity.TeamMember
	analyses []*entity.Analysis

	commits         int
	failDocCreate   error
	failAnalysisUpd error
	// beforeMemberCreate runs inside Create, before the unique check.
	beforeMemberCreate func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[uuid.UUID]*entity.SubscriptionProfile{},
		usage:    map[uuid.UUID]*entity.UsageCounters{},
	}
}

// seedTenant provisions a tenant with explicit limits and counters for the
// current month.
func (s *fakeStore) seedTenant(tier entity.Tier, limits entity.UsageLimits, counters entity.UsageCounters) uuid.UUID {
	id := uuid.New()
	s.profiles[id] = &entity.SubscriptionProfile{
		TenantId:     id,
		Name:         "Acme Contracting",
		OwnerEmail:   "owner@acme.test",
		Tier:         tier,
		TrialEndDate: time.Now().Add(10 * 24 * time.Hour),
		UsageLimits:  &limits,
	}
	counters.TenantId = id
	if counters.PeriodStart.IsZero() {
		counters.PeriodStart = monthStart(time.Now())
	}
	s.usage[id] = &counters
	return id
}

func (s *fakeStore) counters(id uuid.UUID) entity.UsageCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.usage[id]
}

func (s *fakeStore) auditOutcomes() []entity.UploadOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.UploadOutcome, 0, len(s.audits))
	for _, a := range s.audits {
		out = append(out, a.Outcome)
	}
	return out
}

type row struct {
	id, tenant          uuid.UUID
	status, email, tier string
}

func matches(r row, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if r.id != s.ID {
				return false
			}
		case specification.TenantOwnedBy:
			if r.tenant != s.TenantID {
				return false
			}
		case specification.ByStatus:
			if r.status != s.Status {
				return false
			}
		case specification.ByEmail:
			if r.email != s.Email {
				return false
			}
		case specification.ByTier:
			if r.tier != s.Tier {
				return false
			}
		}
	}
	return true
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: f.store}
}

type fakeUoW struct {
	store *fakeStore
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	return nil
}

func (u *fakeUoW) Rollback() error {
	return nil
}

func (u *fakeUoW) Commit() error {
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}

func (u *fakeUoW) TenantRepository() contract.TenantRepository {
	return &fakeTenantRepo{u.store}
}

func (u *fakeUoW) UsageRepository() contract.UsageRepository {
	return &fakeUsageRepo{u.store}
}

func (u *fakeUoW) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{u.store}
}

func (u *fakeUoW) UploadAuditRepository() contract.UploadAuditRepository {
	return &fakeAuditRepo{u.store}
}

func (u *fakeUoW) TeamMemberRepository() contract.TeamMemberRepository {
	return &fakeTeamRepo{u.store}
}

func (u *fakeUoW) AnalysisRepository() contract.AnalysisRepository {
	return &fakeAnalysisRepo{u.store}
}

type fakeTenantRepo struct{ s *fakeStore }

func (r *fakeTenantRepo) CreateProfile(ctx context.Context, p *entity.SubscriptionProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.profiles[p.TenantId] = &cp
	return nil
}

func (r *fakeTenantRepo) UpdateProfile(ctx context.Context, p *entity.SubscriptionProfile) error {
	return r.CreateProfile(ctx, p)
}

func (r *fakeTenantRepo) FindOneProfile(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionProfile, error) {
	all, _ := r.FindAllProfiles(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeTenantRepo) FindAllProfiles(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SubscriptionProfile
	for _, p := range r.s.profiles {
		if matches(row{id: p.TenantId, tenant: p.TenantId, tier: string(p.Tier)}, specs) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUsageRepo struct{ s *fakeStore }

func (r *fakeUsageRepo) EnsureCounters(ctx context.Context, tenantId uuid.UUID, periodStart time.Time) (*entity.UsageCounters, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.usage[tenantId]; !ok {
		r.s.usage[tenantId] = &entity.UsageCounters{TenantId: tenantId, PeriodStart: periodStart}
	}
	cp := *r.s.usage[tenantId]
	return &cp, nil
}

func (r *fakeUsageRepo) FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.UsageCounters, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.usage[tenantId]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeUsageRepo) Increment(ctx context.Context, tenantId uuid.UUID, dim entity.Dimension, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.usage[tenantId]
	if !ok {
		return errors.New("no counters")
	}
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	switch dim {
	case entity.DimensionDocuments:
		c.Documents = clamp(c.Documents + delta)
	case entity.DimensionAnalyses:
		c.AnalysesThisMonth = clamp(c.AnalysesThisMonth + delta)
	case entity.DimensionTeamMembers:
		c.TeamMembers = clamp(c.TeamMembers + delta)
	}
	return nil
}

func (r *fakeUsageRepo) ResetAnalysesPeriod(ctx context.Context, tenantId uuid.UUID, periodStart time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.usage[tenantId]; ok && c.PeriodStart.Before(periodStart) {
		c.AnalysesThisMonth = 0
		c.PeriodStart = periodStart
	}
	return nil
}

type fakeDocumentRepo struct{ s *fakeStore }

func (r *fakeDocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failDocCreate != nil {
		return r.s.failDocCreate
	}
	cp := *d
	r.s.docs = append(r.s.docs, &cp)
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Document
	for _, d := range r.s.docs {
		if matches(row{id: d.Id, tenant: d.TenantId}, specs) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeAuditRepo struct{ s *fakeStore }

func (r *fakeAuditRepo) Create(ctx context.Context, a *entity.UploadAudit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, a)
	return nil
}

func (r *fakeAuditRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UploadAudit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.UploadAudit
	for _, a := range r.s.audits {
		if matches(row{id: a.Id, tenant: a.TenantId, status: string(a.Outcome)}, specs) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeTeamRepo struct{ s *fakeStore }

func (r *fakeTeamRepo) Create(ctx context.Context, m *entity.TeamMember) error {
	if r.s.beforeMemberCreate != nil {
		r.s.beforeMemberCreate()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.members {
		if existing.TenantId == m.TenantId && existing.Email == m.Email {
			return contract.ErrDuplicateMember
		}
	}
	r.s.members = append(r.s.members, m)
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, m := range r.s.members {
		if m.Id == id {
			r.s.members = append(r.s.members[:i], r.s.members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeTeamRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TeamMember, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeTeamRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TeamMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TeamMember
	for _, m := range r.s.members {
		if matches(row{id: m.Id, tenant: m.TenantId, email: m.Email}, specs) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeAnalysisRepo struct{ s *fakeStore }

func (r *fakeAnalysisRepo) Create(ctx context.Context, a *entity.Analysis) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.analyses = append(r.s.analyses, &cp)
	return nil
}

func (r *fakeAnalysisRepo) Update(ctx context.Context, a *entity.Analysis) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAnalysisUpd != nil {
		return r.s.failAnalysisUpd
	}
	for i, existing := range r.s.analyses {
		if existing.Id == a.Id {
			cp := *a
			r.s.analyses[i] = &cp
		}
	}
	return nil
}

func (r *fakeAnalysisRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analysis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.analyses {
		if matches(row{id: a.Id, tenant: a.TenantId, status: string(a.Status)}, specs) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.analyses {
		if matches(row{id: a.Id, tenant: a.TenantId, status: string(a.Status)}, specs) {
			n++
		}
	}
	return n, nil
}

// recordingPublisher captures audit events by type.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) record(t string) {
	p.mu.Lock()
	p.events = append(p.events, t)
	p.mu.Unlock()
}

func (p *recordingPublisher) count(t string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == t {
			n++
		}
	}
	return n
}

func (p *recordingPublisher) PublishContentUnsafe(ctx context.Context, tenantId, userId, candidateId uuid.UUID, fileName, reason string, indeterminate bool) {
	p.record("unsafe")
}

func (p *recordingPublisher) PublishUploadAccepted(ctx context.Context, tenantId, userId, documentId uuid.UUID, fileName string, sizeBytes int64) {
	p.record("accepted")
}

func (p *recordingPublisher) PublishAdmissionDenied(ctx context.Context, tenantId uuid.UUID, dimension string, used, limit int, reason string) {
	p.record("denied")
}

func (p *recordingPublisher) PublishUsageApproaching(ctx context.Context, tenantId uuid.UUID, percentages map[string]int) {
	p.record("approaching")
}

func (p *recordingPublisher) PublishAnalysisCompleted(ctx context.Context, tenantId, analysisId, documentId uuid.UUID, status string) {
	p.record("analysis:" + status)
}

// memStorage keeps objects in a map.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*storage.Object, error) {
	if m.failPut != nil {
		return nil, m.failPut
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return &storage.Object{Key: key, Path: key, URL: "http://files.test/" + key}, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
