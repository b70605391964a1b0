package dto

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrAnalysisNotFound     = errors.New("analysis not found")
	ErrTeamMemberNotFound   = errors.New("team member not found")
	ErrTeamMemberExists     = errors.New("team member already exists")
	ErrOwnerCannotBeRemoved = errors.New("the tenant owner cannot be removed")
	ErrInvalidDimension     = errors.New("unknown usage dimension")
	ErrUploadNotPending     = errors.New("upload is not in progress")
)

// AdmissionDeniedError is returned when a metered action would exceed the
// tenant's limit or the trial has expired. Mapped to 429.
type AdmissionDeniedError struct {
	Dimension string `json:"dimension"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Reason    string `json:"reason"`
}

const (
	ReasonTrialExpired   = "trial expired"
	ReasonNotProvisioned = "subscription limits are not provisioned"
	ReasonLimitReached   = "plan limit reached"
)

func (e *AdmissionDeniedError) Error() string {
	switch e.Reason {
	case ReasonTrialExpired:
		return fmt.Sprintf("%s not allowed: trial expired", e.Dimension)
	case ReasonNotProvisioned:
		return fmt.Sprintf("%s not allowed: %s", e.Dimension, ReasonNotProvisioned)
	}
	return fmt.Sprintf("%s limit reached (%d of %d): %s", e.Dimension, e.Used, e.Limit, e.Reason)
}

// AdmissionDeniedData is the data payload for 429 responses
type AdmissionDeniedData struct {
	Dimension        string `json:"dimension"`
	Limit            int    `json:"limit"`
	Used             int    `json:"used"`
	Reason           string `json:"reason"`
	ShowModalPricing bool   `json:"show_modal_pricing"`
}

// ValidationFailedError carries every rule a request broke. Mapped to 422.
type ValidationFailedError struct {
	Errors []string `json:"errors"`
}

func (e *ValidationFailedError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// ContentUnsafeError is raised when a scan rejects a single-file request.
type ContentUnsafeError struct {
	Reason string `json:"reason"`
}

func (e *ContentUnsafeError) Error() string {
	return "content rejected: " + e.Reason
}
