// Package document persists document rows and their ownership indexes.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the document storage contracts of the usecase layer.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new document row and registers it in the global and
// per-owner indexes.
func (r *Repo) Create(ctx context.Context, doc *domain.Document) error {
	if err := r.store.HSet(ctx, docKey(doc.ID), buildFields(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", docKey(doc.ID), err)
	}
	if err := r.store.SAdd(ctx, allDocsKey(), doc.ID); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	if err := r.store.SAdd(ctx, ownerKey(doc.OwnerID), doc.ID); err != nil {
		return fmt.Errorf("index owner %s: %w", doc.OwnerID, err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Document, error) {
	m, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return domain.Document{}, fmt.Errorf("hgetall %s: %w", docKey(id), err)
	}
	if len(m) == 0 {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return parseFields(id, m), nil
}

// ListByOwner returns every document of one owner.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	return r.listByIndex(ctx, ownerKey(ownerID))
}

// ListAll returns every document across all owners.
func (r *Repo) ListAll(ctx context.Context) ([]domain.Document, error) {
	return r.listByIndex(ctx, allDocsKey())
}

func (r *Repo) listByIndex(ctx context.Context, indexKey string) ([]domain.Document, error) {
	ids, err := r.store.SMembers(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", indexKey, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	docs := make([]domain.Document, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			// Row deleted between SMEMBERS and HGETALL; skip the ghost.
			continue
		}
		docs = append(docs, parseFields(ids[i], m))
	}
	return docs, nil
}

// SetStatus transitions the stored status and error message. The caller is
// responsible for validating the transition against the state machine.
func (r *Repo) SetStatus(ctx context.Context, id string, status domain.Status, errMsg string) error {
	fields := map[string]string{
		"status":        string(status),
		"error_message": errMsg,
		"updated_at":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.HSet(ctx, docKey(id), fields); err != nil {
		return fmt.Errorf("set status %s: %w", id, err)
	}
	return nil
}

// Delete removes the document row and its index entries. Chunk and embedding
// cascade is the chunk repository's job, driven by the usecase.
func (r *Repo) Delete(ctx context.Context, id string) error {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("del %s: %w", docKey(id), err)
	}
	if err := r.store.SRem(ctx, allDocsKey(), id); err != nil {
		return fmt.Errorf("unindex document %s: %w", id, err)
	}
	if err := r.store.SRem(ctx, ownerKey(doc.OwnerID), id); err != nil {
		return fmt.Errorf("unindex owner %s: %w", doc.OwnerID, err)
	}
	return nil
}

func docKey(id string) string {
	return fmt.Sprintf("%sdocument:%s", domain.KeyPrefix, id)
}

func allDocsKey() string {
	return domain.KeyPrefix + "documents"
}

func ownerKey(ownerID string) string {
	return fmt.Sprintf("%sowner:%s:documents", domain.KeyPrefix, ownerID)
}
