// Package usage decides whether a tenant may perform a metered action.
//
// Admission checks fail closed: a missing profile, missing limits or missing
// counters deny the action. Display helpers (percentages, urgency) fail soft and
// report 0% / safe instead, so a broken row never takes the dashboard down.
package usage

import (
	"math"

	"far-compliance-be/internal/entity"
)

// DefaultWarningThreshold is the percentage at which a dimension counts as
// approaching its limit.
const DefaultWarningThreshold = 80

// Decision is the result of one admission check.
type Decision struct {
	Dimension entity.Dimension
	Allowed   bool
	Used      int
	Limit     int
}

// IsUnlimited reports whether limit is the unlimited sentinel.
func IsUnlimited(limit int) bool {
	return limit == entity.Unlimited
}

// lookup returns the counter and limit for a dimension. ok is false when the
// inputs are missing or malformed.
func lookup(profile *entity.SubscriptionProfile, counters *entity.UsageCounters, dim entity.Dimension) (used, limit int, ok bool) {
	if profile == nil || profile.UsageLimits == nil || counters == nil {
		return 0, 0, false
	}

	switch dim {
	case entity.DimensionDocuments:
		used, limit = counters.Documents, profile.UsageLimits.MaxDocuments
	case entity.DimensionAnalyses:
		used, limit = counters.AnalysesThisMonth, profile.UsageLimits.MaxAnalysesPerMonth
	case entity.DimensionTeamMembers:
		used, limit = counters.TeamMembers, profile.UsageLimits.MaxTeamMembers
	default:
		return 0, 0, false
	}

	if used < 0 || (limit < 0 && !IsUnlimited(limit)) {
		return used, limit, false
	}
	return used, limit, true
}

// Check evaluates a single dimension.
func Check(profile *entity.SubscriptionProfile, counters *entity.UsageCounters, dim entity.Dimension) Decision {
	used, limit, ok := lookup(profile, counters, dim)
	d := Decision{Dimension: dim, Used: used, Limit: limit}
	if !ok {
		return d
	}
	d.Allowed = IsUnlimited(limit) || used < limit
	return d
}

func CanUploadDocument(profile *entity.SubscriptionProfile, counters *entity.UsageCounters) bool {
	return Check(profile, counters, entity.DimensionDocuments).Allowed
}

func CanRunAnalysis(profile *entity.SubscriptionProfile, counters *entity.UsageCounters) bool {
	return Check(profile, counters, entity.DimensionAnalyses).Allowed
}

func CanAddTeamMember(profile *entity.SubscriptionProfile, counters *entity.UsageCounters) bool {
	return Check(profile, counters, entity.DimensionTeamMembers).Allowed
}

// HasReachedAnyLimit is true when any admission check denies.
func HasReachedAnyLimit(profile *entity.SubscriptionProfile, counters *entity.UsageCounters) bool {
	return !CanUploadDocument(profile, counters) ||
		!CanRunAnalysis(profile, counters) ||
		!CanAddTeamMember(profile, counters)
}

// IsApproachingLimits is true when any finite dimension is at or above
// threshold percent. Unlimited and malformed dimensions are ignored.
func IsApproachingLimits(profile *entity.SubscriptionProfile, counters *entity.UsageCounters, threshold int) bool {
	for _, dim := range entity.Dimensions {
		used, limit, ok := lookup(profile, counters, dim)
		if !ok || IsUnlimited(limit) {
			continue
		}
		if percentage(used, limit) >= threshold {
			return true
		}
	}
	return false
}

// UsagePercentage returns how much of a dimension is consumed, in [0, 100].
// Unlimited or malformed dimensions report 0.
func UsagePercentage(profile *entity.SubscriptionProfile, counters *entity.UsageCounters, dim entity.Dimension) int {
	used, limit, ok := lookup(profile, counters, dim)
	if !ok || IsUnlimited(limit) {
		return 0
	}
	return percentage(used, limit)
}

// percentage expects a finite limit. A zero limit is already exhausted.
func percentage(used, limit int) int {
	if limit == 0 {
		return 100
	}
	pct := int(math.Round(float64(used) / float64(limit) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
