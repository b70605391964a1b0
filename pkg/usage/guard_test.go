package usage

import (
	"testing"

	"far-compliance-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func profileWith(docs, analyses, members int) *entity.SubscriptionProfile {
	return &entity.SubscriptionProfile{
		Tier: entity.TierTrial,
		UsageLimits: &entity.UsageLimits{
			MaxDocuments:        docs,
			MaxAnalysesPerMonth: analyses,
			MaxTeamMembers:      members,
		},
	}
}

func TestAdmissionChecks(t *testing.T) {
	tests := []struct {
		name         string
		profile      *entity.SubscriptionProfile
		counters     *entity.UsageCounters
		wantDocs     bool
		wantAnalyses bool
		wantMembers  bool
	}{
		{
			name:         "all under limit",
			profile:      profileWith(10, 5, 3),
			counters:     &entity.UsageCounters{Documents: 9, AnalysesThisMonth: 4, TeamMembers: 2},
			wantDocs:     true,
			wantAnalyses: true,
			wantMembers:  true,
		},
		{
			name:         "all at limit",
			profile:      profileWith(10, 5, 3),
			counters:     &entity.UsageCounters{Documents: 10, AnalysesThisMonth: 5, TeamMembers: 3},
			wantDocs:     false,
			wantAnalyses: false,
			wantMembers:  false,
		},
		{
			name:         "unlimited ignores counters",
			profile:      profileWith(entity.Unlimited, entity.Unlimited, entity.Unlimited),
			counters:     &entity.UsageCounters{Documents: 1_000_000, AnalysesThisMonth: 99999, TeamMembers: 500},
			wantDocs:     true,
			wantAnalyses: true,
			wantMembers:  true,
		},
		{
			name:         "zero limit denies",
			profile:      profileWith(0, 0, 0),
			counters:     &entity.UsageCounters{},
			wantDocs:     false,
			wantAnalyses: false,
			wantMembers:  false,
		},
		{
			name:     "nil profile fails closed",
			profile:  nil,
			counters: &entity.UsageCounters{},
		},
		{
			name:     "nil limits fail closed",
			profile:  &entity.SubscriptionProfile{Tier: entity.TierBasic},
			counters: &entity.UsageCounters{},
		},
		{
			name:    "nil counters fail closed",
			profile: profileWith(10, 10, 10),
		},
		{
			name:         "negative counter fails closed",
			profile:      profileWith(10, 10, 10),
			counters:     &entity.UsageCounters{Documents: -1, AnalysesThisMonth: 1, TeamMembers: 1},
			wantDocs:     false,
			wantAnalyses: true,
			wantMembers:  true,
		},
		{
			name:         "negative limit other than sentinel fails closed",
			profile:      profileWith(-5, 10, 10),
			counters:     &entity.UsageCounters{},
			wantDocs:     false,
			wantAnalyses: true,
			wantMembers:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDocs, CanUploadDocument(tt.profile, tt.counters))
			assert.Equal(t, tt.wantAnalyses, CanRunAnalysis(tt.profile, tt.counters))
			assert.Equal(t, tt.wantMembers, CanAddTeamMember(tt.profile, tt.counters))

			anyDenied := !tt.wantDocs || !tt.wantAnalyses || !tt.wantMembers
			assert.Equal(t, anyDenied, HasReachedAnyLimit(tt.profile, tt.counters))
		})
	}
}

func TestUnlimitedDocumentsAlwaysAdmitted(t *testing.T) {
	profile := profileWith(entity.Unlimited, 1, 1)
	for _, n := range []int{0, 1, 10, 1 << 20} {
		assert.True(t, CanUploadDocument(profile, &entity.UsageCounters{Documents: n}), "documents=%d", n)
	}
}

func TestCheckReportsUsedAndLimit(t *testing.T) {
	d := Check(profileWith(10, 5, 3), &entity.UsageCounters{AnalysesThisMonth: 5}, entity.DimensionAnalyses)
	assert.False(t, d.Allowed)
	assert.Equal(t, 5, d.Used)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, entity.DimensionAnalyses, d.Dimension)

	unknown := Check(profileWith(10, 5, 3), &entity.UsageCounters{}, entity.Dimension("storage"))
	assert.False(t, unknown.Allowed)
}

func TestUsagePercentage(t *testing.T) {
	tests := []struct {
		name     string
		profile  *entity.SubscriptionProfile
		counters *entity.UsageCounters
		dim      entity.Dimension
		want     int
	}{
		{"half", profileWith(10, 5, 3), &entity.UsageCounters{Documents: 5}, entity.DimensionDocuments, 50},
		{"rounds", profileWith(3, 5, 3), &entity.UsageCounters{Documents: 2}, entity.DimensionDocuments, 67},
		{"at limit", profileWith(10, 5, 3), &entity.UsageCounters{AnalysesThisMonth: 5}, entity.DimensionAnalyses, 100},
		{"over limit clamps", profileWith(10, 5, 3), &entity.UsageCounters{TeamMembers: 7}, entity.DimensionTeamMembers, 100},
		{"unlimited", profileWith(entity.Unlimited, 5, 3), &entity.UsageCounters{Documents: 400}, entity.DimensionDocuments, 0},
		{"zero limit", profileWith(0, 5, 3), &entity.UsageCounters{}, entity.DimensionDocuments, 100},
		{"nil profile", nil, &entity.UsageCounters{Documents: 3}, entity.DimensionDocuments, 0},
		{"nil counters", profileWith(10, 5, 3), nil, entity.DimensionDocuments, 0},
		{"nil limits", &entity.SubscriptionProfile{}, &entity.UsageCounters{}, entity.DimensionDocuments, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsagePercentage(tt.profile, tt.counters, tt.dim)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestUsagePercentageIsFullWheneverAtOrOverLimit(t *testing.T) {
	for limit := 1; limit <= 20; limit++ {
		for used := limit; used <= limit*3; used++ {
			got := UsagePercentage(profileWith(limit, 1, 1), &entity.UsageCounters{Documents: used}, entity.DimensionDocuments)
			assert.Equal(t, 100, got, "used=%d limit=%d", used, limit)
		}
	}
}

func TestIsApproachingLimits(t *testing.T) {
	profile := profileWith(10, 5, entity.Unlimited)

	assert.False(t, IsApproachingLimits(profile, &entity.UsageCounters{Documents: 7, AnalysesThisMonth: 3}, DefaultWarningThreshold))
	assert.True(t, IsApproachingLimits(profile, &entity.UsageCounters{Documents: 8}, DefaultWarningThreshold))
	assert.True(t, IsApproachingLimits(profile, &entity.UsageCounters{AnalysesThisMonth: 4}, DefaultWarningThreshold))
	assert.False(t, IsApproachingLimits(profile, &entity.UsageCounters{TeamMembers: 10000}, DefaultWarningThreshold))
	assert.True(t, IsApproachingLimits(profile, &entity.UsageCounters{Documents: 5}, 50))

	assert.False(t, IsApproachingLimits(nil, &entity.UsageCounters{}, DefaultWarningThreshold))
	assert.False(t, IsApproachingLimits(profile, nil, DefaultWarningThreshold))
}

func TestTrialAtAnalysisLimit(t *testing.T) {
	profile := profileWith(10, 5, 3)
	counters := &entity.UsageCounters{AnalysesThisMonth: 5}

	assert.False(t, CanRunAnalysis(profile, counters))
	assert.Equal(t, 100, UsagePercentage(profile, counters, entity.DimensionAnalyses))
	assert.True(t, IsApproachingLimits(profile, counters, DefaultWarningThreshold))
}

func TestLimitsForTier(t *testing.T) {
	assert.Equal(t, entity.Unlimited, LimitsForTier(entity.TierEnterprise).MaxDocuments)
	assert.Equal(t, 5, LimitsForTier(entity.TierTrial).MaxAnalysesPerMonth)
	assert.Equal(t, LimitsForTier(entity.TierTrial), LimitsForTier(entity.Tier("platinum")))
}
