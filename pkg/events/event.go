package events

import "time"

// Event types published on the bus.
const (
	TypeUploadContentUnsafe = "UPLOAD_CONTENT_UNSAFE"
	TypeUploadAccepted      = "UPLOAD_ACCEPTED"
	TypeAdmissionDenied     = "USAGE_ADMISSION_DENIED"
	TypeUsageApproaching    = "USAGE_APPROACHING_LIMIT"
	TypeAnalysisCompleted   = "ANALYSIS_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "UPLOAD_ACCEPTED").
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
