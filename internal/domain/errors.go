package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat signals a declared media type the parser cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyContent signals extraction produced no text (e.g. image-only scans).
	ErrEmptyContent = errors.New("no text could be extracted from document")
	// ErrChunkingFailed signals the chunker produced zero chunks.
	ErrChunkingFailed = errors.New("failed to create text chunks")
	// ErrMissingID signals a required identifier was absent from the request.
	ErrMissingID = errors.New("missing required identifier")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNoVisibleDocuments signals an empty access-filtered document set.
	ErrNoVisibleDocuments = errors.New("no documents available")
	// ErrNoSearchableChunks signals visible documents exist but none has a
	// chunk with a stored embedding.
	ErrNoSearchableChunks = errors.New("no processed chunks found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrInvalidTransition signals an illegal document status transition.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDocumentBusy signals another pipeline run holds the document lease.
	ErrDocumentBusy = errors.New("document is already being processed")
	// ErrFileTooLarge signals an upload over the configured size cap.
	ErrFileTooLarge = errors.New("file too large")
)

// TransitionError wraps ErrInvalidTransition with the attempted edge.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition.Error(), e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// NewInvalidTransition creates a status transition error.
func NewInvalidTransition(from, to Status) error {
	return &TransitionError{From: from, To: to}
}
