package pipeline

import (
	"context"
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// DocumentRepo defines the document storage contract of the pipeline.
type DocumentRepo interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	SetStatus(ctx context.Context, id string, status domain.Status, errorMessage string) error
}

// ChunkRepo defines the chunk and embedding storage contract of the pipeline.
type ChunkRepo interface {
	CreateChunk(ctx context.Context, c *domain.Chunk) error
	CreateEmbedding(ctx context.Context, e *domain.Embedding) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)
	HasEmbedding(ctx context.Context, chunkID string) (bool, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Locker grants advisory leases serializing work on one document.
type Locker interface {
	AcquireLease(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, key string) error
}
