package usage

import "far-compliance-be/internal/entity"

var tierLimits = map[entity.Tier]entity.UsageLimits{
	entity.TierTrial: {
		MaxDocuments:        5,
		MaxAnalysesPerMonth: 5,
		MaxTeamMembers:      1,
	},
	entity.TierBasic: {
		MaxDocuments:        50,
		MaxAnalysesPerMonth: 25,
		MaxTeamMembers:      3,
	},
	entity.TierProfessional: {
		MaxDocuments:        500,
		MaxAnalysesPerMonth: 200,
		MaxTeamMembers:      10,
	},
	entity.TierEnterprise: {
		MaxDocuments:        entity.Unlimited,
		MaxAnalysesPerMonth: entity.Unlimited,
		MaxTeamMembers:      entity.Unlimited,
	},
}

// LimitsForTier returns the provisioning defaults for a tier. Unknown tiers get
// trial limits.
func LimitsForTier(tier entity.Tier) entity.UsageLimits {
	if limits, ok := tierLimits[tier]; ok {
		return limits
	}
	return tierLimits[entity.TierTrial]
}
