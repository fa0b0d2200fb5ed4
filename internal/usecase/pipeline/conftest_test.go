package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

type mockDocumentRepo struct {
	mu       sync.Mutex
	getFn    func(ctx context.Context, id string) (domain.Document, error)
	statuses []statusCall
}

type statusCall struct {
	ID           string
	Status       domain.Status
	ErrorMessage string
}

func (m *mockDocumentRepo) Get(ctx context.Context, id string) (domain.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Document{ID: id, Status: domain.StatusUploaded}, nil
}

func (m *mockDocumentRepo) SetStatus(_ context.Context, id string, status domain.Status, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, statusCall{ID: id, Status: status, ErrorMessage: errorMessage})
	return nil
}

func (m *mockDocumentRepo) lastStatus() (statusCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statuses) == 0 {
		return statusCall{}, false
	}
	return m.statuses[len(m.statuses)-1], true
}

type mockChunkRepo struct {
	mu           sync.Mutex
	chunks       []domain.Chunk
	embeddings   []domain.Embedding
	listFn       func(ctx context.Context, documentID string) ([]domain.Chunk, error)
	hasFn        func(ctx context.Context, chunkID string) (bool, error)
	createChunkErr     error
	createEmbeddingErr error
}

func (m *mockChunkRepo) CreateChunk(_ context.Context, c *domain.Chunk) error {
	if m.createChunkErr != nil {
		return m.createChunkErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, *c)
	return nil
}

func (m *mockChunkRepo) CreateEmbedding(_ context.Context, e *domain.Embedding) error {
	if m.createEmbeddingErr != nil {
		return m.createEmbeddingErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings = append(m.embeddings, *e)
	return nil
}

func (m *mockChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if m.listFn != nil {
		return m.listFn(ctx, documentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Chunk(nil), m.chunks...), nil
}

func (m *mockChunkRepo) HasEmbedding(ctx context.Context, chunkID string) (bool, error) {
	if m.hasFn != nil {
		return m.hasFn(ctx, chunkID)
	}
	return false, nil
}

type mockEmbedder struct {
	mu      sync.Mutex
	calls   int
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 1}, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockLocker struct {
	held     bool
	acquired []string
	released []string
}

func (m *mockLocker) AcquireLease(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.held {
		return false, nil
	}
	m.acquired = append(m.acquired, key)
	return true, nil
}

func (m *mockLocker) ReleaseLease(_ context.Context, key string) error {
	m.released = append(m.released, key)
	return nil
}
