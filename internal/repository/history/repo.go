// Package history persists the append-only question/answer log.
package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// store is the consumer interface for query records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// sourcesSeparator joins source document IDs into one hash field. UUIDs never
// contain it.
const sourcesSeparator = ","

// Repo implements the query history storage contract.
type Repo struct {
	store store
}

// New creates a history repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create appends one query record.
func (r *Repo) Create(ctx context.Context, rec *domain.QueryRecord) error {
	fields := map[string]string{
		"requester_id": rec.RequesterID,
		"question":     rec.Question,
		"answer":       rec.Answer,
		"sources":      strings.Join(rec.Sources, sourcesSeparator),
		"created_at":   rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.HSet(ctx, recordKey(rec.ID), fields); err != nil {
		return fmt.Errorf("hset %s: %w", recordKey(rec.ID), err)
	}
	if err := r.store.SAdd(ctx, requesterKey(rec.RequesterID), rec.ID); err != nil {
		return fmt.Errorf("index record %s: %w", rec.ID, err)
	}
	return nil
}

// ListByRequester returns up to limit records, newest first.
func (r *Repo) ListByRequester(ctx context.Context, requesterID string, limit int) ([]domain.QueryRecord, error) {
	ids, err := r.store.SMembers(ctx, requesterKey(requesterID))
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", requesterKey(requesterID), err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	records := make([]domain.QueryRecord, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		records = append(records, parseFields(ids[i], m))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func parseFields(id string, m map[string]string) domain.QueryRecord {
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])
	var sources []string
	if m["sources"] != "" {
		sources = strings.Split(m["sources"], sourcesSeparator)
	}
	return domain.QueryRecord{
		ID:          id,
		RequesterID: m["requester_id"],
		Question:    m["question"],
		Answer:      m["answer"],
		Sources:     sources,
		CreatedAt:   createdAt,
	}
}

func recordKey(id string) string {
	return fmt.Sprintf("%squery:%s", domain.KeyPrefix, id)
}

func requesterKey(requesterID string) string {
	return fmt.Sprintf("%srequester:%s:queries", domain.KeyPrefix, requesterID)
}
