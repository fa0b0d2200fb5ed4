package domain

import "time"

// Status is the processing state of a document.
type Status string

const (
	// StatusUploaded means the raw bytes are stored but not yet processed.
	StatusUploaded Status = "uploaded"
	// StatusProcessing means the ingestion pipeline is running.
	StatusProcessing Status = "processing"
	// StatusCompleted means every chunk has a stored embedding.
	StatusCompleted Status = "completed"
	// StatusFailed means a pipeline stage failed; ErrorMessage holds the cause.
	StatusFailed Status = "failed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether s -> next is a legal transition.
// The machine is uploaded -> processing -> completed | failed. There is no
// automatic path out of a terminal state; retry is a caller-driven re-upload.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusUploaded:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Transition returns next if s -> next is legal, or a TransitionError.
func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransition(next) {
		return s, NewInvalidTransition(s, next)
	}
	return next, nil
}

// Document is an uploaded file tracked through the ingestion pipeline.
// Raw bytes live in the blob store under StoragePath; extracted text lives
// only in the document's chunks.
type Document struct {
	ID           string
	OwnerID      string
	Filename     string
	MediaType    string
	SizeBytes    int64
	StoragePath  string
	Status       Status
	ErrorMessage string

	// Visibility flags. OwnerVisible is always true; the other two widen the
	// query scope per access mode.
	OwnerVisible    bool
	EmployeeVisible bool
	CustomerVisible bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
