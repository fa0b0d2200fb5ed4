// Package chunk persists chunk and embedding rows. Rows are written once by
// the pipeline and destroyed only by document deletion.
package chunk

import (
	"context"
	"fmt"
	"sort"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// store is the consumer interface for chunk rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the chunk storage contracts of the usecase layer.
type Repo struct {
	store store
}

// New creates a chunk repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// CreateChunk stores one chunk row and registers it in the document's chunk index.
func (r *Repo) CreateChunk(ctx context.Context, c *domain.Chunk) error {
	fields := map[string]string{
		"document_id": c.DocumentID,
		"index":       fmt.Sprintf("%d", c.Index),
		"content":     c.Content,
	}
	if err := r.store.HSet(ctx, chunkKey(c.ID), fields); err != nil {
		return fmt.Errorf("hset %s: %w", chunkKey(c.ID), err)
	}
	if err := r.store.SAdd(ctx, docChunksKey(c.DocumentID), c.ID); err != nil {
		return fmt.Errorf("index chunk %s: %w", c.ID, err)
	}
	return nil
}

// CreateEmbedding stores the embedding row for a chunk. The row is keyed by
// chunk ID, which also enforces the one-embedding-per-chunk invariant.
func (r *Repo) CreateEmbedding(ctx context.Context, e *domain.Embedding) error {
	fields := map[string]string{
		"id":       e.ID,
		"chunk_id": e.ChunkID,
		"vector":   vectorToString(e.Vector),
	}
	if err := r.store.HSet(ctx, embeddingKey(e.ChunkID), fields); err != nil {
		return fmt.Errorf("hset %s: %w", embeddingKey(e.ChunkID), err)
	}
	return nil
}

// ListByDocument returns a document's chunks in ascending index order.
func (r *Repo) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	ids, err := r.store.SMembers(ctx, docChunksKey(documentID))
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", docChunksKey(documentID), err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = chunkKey(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		chunks = append(chunks, parseChunkFields(ids[i], m))
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// ListCandidates returns every chunk of the given documents that has a stored
// embedding. Chunks without one (mid-pipeline failure leftovers) are skipped,
// so they can never surface in search results.
func (r *Repo) ListCandidates(ctx context.Context, documentIDs []string) ([]domain.CandidateChunk, error) {
	var candidates []domain.CandidateChunk

	for _, docID := range documentIDs {
		chunks, err := r.ListByDocument(ctx, docID)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			continue
		}

		keys := make([]string, len(chunks))
		for i, c := range chunks {
			keys[i] = embeddingKey(c.ID)
		}
		maps, err := r.store.HGetAllMulti(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("hgetall embeddings: %w", err)
		}

		for i, m := range maps {
			vector := stringToVector(m["vector"])
			if len(vector) == 0 {
				continue
			}
			candidates = append(candidates, domain.CandidateChunk{
				Chunk:  chunks[i],
				Vector: vector,
			})
		}
	}
	return candidates, nil
}

// HasEmbedding reports whether a chunk's embedding row exists.
func (r *Repo) HasEmbedding(ctx context.Context, chunkID string) (bool, error) {
	m, err := r.store.HGetAll(ctx, embeddingKey(chunkID))
	if err != nil {
		return false, fmt.Errorf("hgetall %s: %w", embeddingKey(chunkID), err)
	}
	return len(m) > 0, nil
}

// DeleteByDocument cascade-deletes all chunk and embedding rows of a document.
func (r *Repo) DeleteByDocument(ctx context.Context, documentID string) error {
	ids, err := r.store.SMembers(ctx, docChunksKey(documentID))
	if err != nil {
		return fmt.Errorf("smembers %s: %w", docChunksKey(documentID), err)
	}

	keys := make([]string, 0, len(ids)*2+1)
	for _, id := range ids {
		keys = append(keys, chunkKey(id), embeddingKey(id))
	}
	keys = append(keys, docChunksKey(documentID))

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("cascade delete %s: %w", documentID, err)
	}
	return nil
}

func chunkKey(id string) string {
	return fmt.Sprintf("%schunk:%s", domain.KeyPrefix, id)
}

func embeddingKey(chunkID string) string {
	return fmt.Sprintf("%sembedding:%s", domain.KeyPrefix, chunkID)
}

func docChunksKey(documentID string) string {
	return fmt.Sprintf("%sdocument:%s:chunks", domain.KeyPrefix, documentID)
}
