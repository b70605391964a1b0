package entity

import (
	"time"

	"github.com/google/uuid"
)

// Dimension names a metered action.
type Dimension string

const (
	DimensionDocuments   Dimension = "documents"
	DimensionAnalyses    Dimension = "analyses"
	DimensionTeamMembers Dimension = "team_members"
)

// Dimensions lists every metered dimension in display order.
var Dimensions = []Dimension{DimensionDocuments, DimensionAnalyses, DimensionTeamMembers}

func (d Dimension) Valid() bool {
	switch d {
	case DimensionDocuments, DimensionAnalyses, DimensionTeamMembers:
		return true
	}
	return false
}

// UsageCounters are per tenant. AnalysesThisMonth restarts at zero once
// PeriodStart falls before the current calendar month; Documents and
// TeamMembers track live totals.
type UsageCounters struct {
	TenantId          uuid.UUID
	Documents         int
	AnalysesThisMonth int
	TeamMembers       int
	PeriodStart       time.Time
	UpdatedAt         time.Time
}
