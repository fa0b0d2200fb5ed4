package query

import (
	"context"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// DocumentRepo reads documents for access filtering.
type DocumentRepo interface {
	ListAll(ctx context.Context) ([]domain.Document, error)
}

// ChunkRepo fetches search candidates: chunks that have a stored embedding.
type ChunkRepo interface {
	ListCandidates(ctx context.Context, documentIDs []string) ([]domain.CandidateChunk, error)
}

// Embedder vectorizes the question.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the grounded answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HistoryRepo persists and reads the question/answer log.
type HistoryRepo interface {
	Create(ctx context.Context, rec *domain.QueryRecord) error
	ListByRequester(ctx context.Context, requesterID string, limit int) ([]domain.QueryRecord, error)
}
