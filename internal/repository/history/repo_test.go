package history

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	saddFn         func(ctx context.Context, key string, members ...string) error
	smembersFn     func(ctx context.Context, key string) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) SAdd(ctx context.Context, key string, members ...string) error {
	if m.saddFn != nil {
		return m.saddFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func TestCreate_JoinsSources(t *testing.T) {
	var fields map[string]string
	s := &mockStore{
		hsetFn: func(_ context.Context, _ string, f map[string]string) error {
			fields = f
			return nil
		},
	}

	err := New(s).Create(context.Background(), &domain.QueryRecord{
		ID:          "q1",
		RequesterID: "u1",
		Question:    "what is the refund policy?",
		Answer:      "thirty days.",
		Sources:     []string{"d1", "d2"},
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["sources"] != "d1,d2" {
		t.Errorf("unexpected sources field: %q", fields["sources"])
	}
}

func TestListByRequester_NewestFirstLimited(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &mockStore{
		smembersFn: func(_ context.Context, _ string) ([]string, error) {
			return []string{"q1", "q2", "q3"}, nil
		},
		hgetAllMultiFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			rows := make([]map[string]string, len(keys))
			for i := range keys {
				rows[i] = map[string]string{
					"requester_id": "u1",
					"question":     "q",
					"answer":       "a",
					"created_at":   base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339Nano),
				}
			}
			return rows, nil
		},
	}

	records, err := New(s).ListByRequester(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].CreatedAt.After(records[1].CreatedAt) {
		t.Error("records not sorted newest first")
	}
	if records[0].ID != "q3" {
		t.Errorf("expected newest record q3 first, got %s", records[0].ID)
	}
}

func TestListByRequester_EmptySources(t *testing.T) {
	s := &mockStore{
		smembersFn: func(_ context.Context, _ string) ([]string, error) {
			return []string{"q1"}, nil
		},
		hgetAllMultiFn: func(_ context.Context, _ []string) ([]map[string]string, error) {
			return []map[string]string{{
				"requester_id": "u1",
				"question":     "anything indexed?",
				"answer":       "I don't have enough information to answer that.",
				"sources":      "",
				"created_at":   time.Now().Format(time.RFC3339Nano),
			}}, nil
		},
	}

	records, err := New(s).ListByRequester(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Sources != nil {
		t.Errorf("empty sources should parse as nil, got %v", records[0].Sources)
	}
	if !strings.Contains(records[0].Answer, "enough information") {
		t.Errorf("unexpected answer: %q", records[0].Answer)
	}
}
