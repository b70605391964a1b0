package usage

import (
	"math"
	"time"

	"far-compliance-be/internal/entity"
)

type Urgency string

const (
	UrgencySafe    Urgency = "safe"
	UrgencyWarning Urgency = "warning"
	UrgencyUrgent  Urgency = "urgent"
)

const day = 24 * time.Hour

// DaysRemainingInTrial rounds partial days up and never goes below zero.
func DaysRemainingInTrial(profile *entity.SubscriptionProfile, now time.Time) int {
	if profile == nil {
		return 0
	}
	remaining := profile.TrialEndDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(float64(remaining) / float64(day)))
}

// UrgencyFor maps days left to a banner state: more than 7 is safe, 4 to 7 is
// a warning, 3 or fewer is urgent.
func UrgencyFor(daysRemaining int) Urgency {
	switch {
	case daysRemaining > 7:
		return UrgencySafe
	case daysRemaining >= 4:
		return UrgencyWarning
	default:
		return UrgencyUrgent
	}
}

// TrialUrgency is UrgencyFor for a profile. Anything that is not a trial, or
// no profile at all, is safe.
func TrialUrgency(profile *entity.SubscriptionProfile, now time.Time) Urgency {
	if profile == nil || profile.Tier != entity.TierTrial {
		return UrgencySafe
	}
	return UrgencyFor(DaysRemainingInTrial(profile, now))
}

func IsTrialExpired(profile *entity.SubscriptionProfile, now time.Time) bool {
	return profile != nil && profile.Tier == entity.TierTrial && now.After(profile.TrialEndDate)
}
