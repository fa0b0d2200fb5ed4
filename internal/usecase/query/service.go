// Package query answers questions against the indexed document corpus:
// embed the question, rank visible chunks by cosine similarity, synthesize
// a grounded answer, and log the exchange.
package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kognita-cloud/ragdex/internal/domain"
	"github.com/kognita-cloud/ragdex/internal/logger"
)

// Options holds retrieval and synthesis tuning knobs.
type Options struct {
	TopK          int
	SnippetLength int
	MaxChunkChars int // per-chunk cap inside the prompt, 0 = unlimited
	HistoryLimit  int
}

// Answer is the result of one question.
type Answer struct {
	Answer  string
	Sources []domain.Source
}

// Service implements the retrieval and answer flow.
type Service struct {
	docs      DocumentRepo
	chunks    ChunkRepo
	embedder  Embedder
	generator Generator
	history   HistoryRepo
	opts      Options
}

// New creates a query service.
func New(docs DocumentRepo, chunks ChunkRepo, embedder Embedder, generator Generator, history HistoryRepo, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.SnippetLength <= 0 {
		opts.SnippetLength = 200
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	return &Service{
		docs:      docs,
		chunks:    chunks,
		embedder:  embedder,
		generator: generator,
		history:   history,
		opts:      opts,
	}
}

// Ask answers a question within the requester's access scope.
func (s *Service) Ask(ctx context.Context, question, requesterID string, mode Mode) (Answer, error) {
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("list documents: %w", err)
	}

	visible := visibleDocuments(docs, mode, requesterID)
	if len(visible) == 0 {
		return Answer{}, domain.ErrNoVisibleDocuments
	}

	result, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}

	docIDs := make([]string, len(visible))
	filenames := make(map[string]string, len(visible))
	for i, d := range visible {
		docIDs[i] = d.ID
		filenames[d.ID] = d.Filename
	}

	candidates, err := s.chunks.ListCandidates(ctx, docIDs)
	if err != nil {
		return Answer{}, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return Answer{}, domain.ErrNoSearchableChunks
	}

	top := rank(candidates, result.Embedding, s.opts.TopK)

	contexts := make([]string, len(top))
	sources := make([]domain.Source, len(top))
	for i, sc := range top {
		contexts[i] = truncate(sc.Chunk.Content, s.opts.MaxChunkChars)
		sources[i] = domain.Source{
			DocumentID:     sc.Chunk.DocumentID,
			Filename:       filenames[sc.Chunk.DocumentID],
			Snippet:        truncate(sc.Chunk.Content, s.opts.SnippetLength),
			RelevanceScore: sc.Score,
		}
	}

	answer, err := s.generator.Generate(ctx, buildPrompt(question, contexts))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	s.logExchange(ctx, question, requesterID, answer, sources)

	return Answer{Answer: answer, Sources: sources}, nil
}

// History returns the requester's most recent exchanges, newest first.
func (s *Service) History(ctx context.Context, requesterID string) ([]domain.QueryRecord, error) {
	records, err := s.history.ListByRequester(ctx, requesterID, s.opts.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}

// logExchange appends the question/answer pair to history. The answer was
// already produced, so a logging failure is reported but not surfaced.
func (s *Service) logExchange(ctx context.Context, question, requesterID, answer string, sources []domain.Source) {
	rec := domain.QueryRecord{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		Question:    question,
		Answer:      answer,
		Sources:     dedupeSourceIDs(sources),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.history.Create(context.WithoutCancel(ctx), &rec); err != nil {
		logger.FromContext(ctx).Warn("log query exchange",
			zap.String("requester_id", requesterID), zap.Error(err))
	}
}

// rank scores candidates against the question vector and returns the top k,
// descending by score with ascending chunk ID as the tie break.
func rank(candidates []domain.CandidateChunk, question []float32, k int) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.ScoredChunk{
			Chunk:      c.Chunk,
			DocumentID: c.Chunk.DocumentID,
			Score:      domain.CosineSimilarity(question, c.Vector),
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// dedupeSourceIDs keeps the first occurrence of each source document,
// preserving relevance order.
func dedupeSourceIDs(sources []domain.Source) []string {
	seen := make(map[string]struct{}, len(sources))
	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		if _, ok := seen[src.DocumentID]; ok {
			continue
		}
		seen[src.DocumentID] = struct{}{}
		ids = append(ids, src.DocumentID)
	}
	return ids
}
