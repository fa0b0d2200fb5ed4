package document

import (
	"context"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// Repository defines the document storage contract.
type Repository interface {
	Create(ctx context.Context, doc *domain.Document) error
	Get(ctx context.Context, id string) (domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
	ListAll(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// ChunkRepo cascade-deletes a document's chunk and embedding rows.
type ChunkRepo interface {
	DeleteByDocument(ctx context.Context, documentID string) error
}

// BlobStore reads and writes raw document payloads.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Remove(ctx context.Context, path string) error
}

// Pipeline runs the ingestion stages on an uploaded document.
type Pipeline interface {
	Process(ctx context.Context, documentID, mediaType string, data []byte) (int, error)
	GenerateEmbeddings(ctx context.Context, documentID string) (int, error)
}
