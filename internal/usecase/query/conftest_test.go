package query

import (
	"context"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

type mockDocumentRepo struct {
	docs    []domain.Document
	listErr error
}

func (m *mockDocumentRepo) ListAll(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.listErr
}

type mockChunkRepo struct {
	candidates []domain.CandidateChunk
	gotDocIDs  []string
	listErr    error
}

func (m *mockChunkRepo) ListCandidates(_ context.Context, documentIDs []string) ([]domain.CandidateChunk, error) {
	m.gotDocIDs = documentIDs
	if m.listErr != nil {
		return nil, m.listErr
	}
	// Honor the scope: only candidates of the requested documents.
	allowed := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		allowed[id] = struct{}{}
	}
	var out []domain.CandidateChunk
	for _, c := range m.candidates {
		if _, ok := allowed[c.Chunk.DocumentID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockEmbedder struct {
	vector   []float32
	embedErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.embedErr != nil {
		return domain.EmbeddingResult{}, m.embedErr
	}
	return domain.EmbeddingResult{Embedding: m.vector}, nil
}

type mockGenerator struct {
	answer    string
	gotPrompt string
	genErr    error
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.gotPrompt = prompt
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.answer, nil
}

type mockHistoryRepo struct {
	records   []domain.QueryRecord
	createErr error
}

func (m *mockHistoryRepo) Create(_ context.Context, rec *domain.QueryRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockHistoryRepo) ListByRequester(_ context.Context, requesterID string, limit int) ([]domain.QueryRecord, error) {
	var out []domain.QueryRecord
	for _, r := range m.records {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
