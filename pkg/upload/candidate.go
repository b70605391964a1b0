package upload

import (
	"bytes"
	"io"

	"github.com/google/uuid"
)

// Candidate is one file offered for upload. Bytes are read lazily through Open
// and may be read more than once.
type Candidate struct {
	ID        uuid.UUID
	Name      string
	MimeType  string
	SizeBytes int64
	Open      func() (io.ReadCloser, error)
}

// NewCandidate assigns a fresh ID when id is uuid.Nil.
func NewCandidate(id uuid.UUID, name, mimeType string, size int64, open func() (io.ReadCloser, error)) *Candidate {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Candidate{
		ID:        id,
		Name:      name,
		MimeType:  mimeType,
		SizeBytes: size,
		Open:      open,
	}
}

// CandidateFromBytes wraps an in-memory payload.
func CandidateFromBytes(name, mimeType string, data []byte) *Candidate {
	return NewCandidate(uuid.Nil, name, mimeType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// State is a step of the per-file upload state machine.
type State string

const (
	StatePending    State = "pending"
	StateValidating State = "validating"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
	StateScanning   State = "scanning"
	StateSafe       State = "safe"
	StateUnsafe     State = "unsafe"
	StateAccepted   State = "accepted"
	StateRejected   State = "rejected"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateRejected
}
