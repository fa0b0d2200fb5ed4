// Package pipeline orchestrates document ingestion: the process stage parses
// and chunks raw bytes into stored rows, the embed stage vectorizes stored
// chunks. A document moves uploaded -> processing during process, and
// processing -> completed|failed during embed. Failures are recorded on the
// document; partial rows are never rolled back.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kognita-cloud/ragdex/internal/chunker"
	"github.com/kognita-cloud/ragdex/internal/domain"
	"github.com/kognita-cloud/ragdex/internal/logger"
	"github.com/kognita-cloud/ragdex/internal/metrics"
	"github.com/kognita-cloud/ragdex/internal/parser"
)

// Options holds pipeline tuning knobs.
type Options struct {
	ChunkMaxSize int
	ChunkOverlap int
	Workers      int
	Retries      int
	LeaseTTL     time.Duration
}

// Service runs the ingestion pipeline.
type Service struct {
	docs     DocumentRepo
	chunks   ChunkRepo
	embedder Embedder
	locker   Locker
	opts     Options
}

// New creates a pipeline service.
func New(docs DocumentRepo, chunks ChunkRepo, embedder Embedder, locker Locker, opts Options) *Service {
	if opts.ChunkMaxSize <= 0 {
		opts.ChunkMaxSize = chunker.DefaultMaxSize
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = chunker.DefaultOverlap
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 5 * time.Minute
	}
	return &Service{docs: docs, chunks: chunks, embedder: embedder, locker: locker, opts: opts}
}

// Process parses raw bytes, splits the text, and stores chunk rows.
// The document moves uploaded -> processing and keeps that status on success;
// the embed stage finishes the machine. Returns the number of chunks stored.
func (s *Service) Process(ctx context.Context, documentID, mediaType string, data []byte) (int, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document: %w", err)
	}

	release, err := s.acquire(ctx, documentID)
	if err != nil {
		return 0, err
	}
	defer release()

	if _, err := doc.Status.Transition(domain.StatusProcessing); err != nil {
		return 0, err
	}
	if err := s.docs.SetStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return 0, fmt.Errorf("set status processing: %w", err)
	}

	start := time.Now()
	stored, err := s.process(ctx, documentID, mediaType, data)
	metrics.PipelineStageDuration.WithLabelValues("process").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PipelineDocumentsTotal.WithLabelValues("process", "failed").Inc()
		s.markFailed(ctx, documentID, err)
		return 0, err
	}

	metrics.PipelineDocumentsTotal.WithLabelValues("process", "completed").Inc()
	metrics.PipelineChunksStored.Add(float64(stored))

	logger.FromContext(ctx).Info("document processed",
		zap.String("document_id", documentID),
		zap.Int("chunks", stored),
	)
	return stored, nil
}

func (s *Service) process(ctx context.Context, documentID, mediaType string, data []byte) (int, error) {
	text, err := parser.Parse(data, mediaType)
	if err != nil {
		return 0, fmt.Errorf("parse document: %w", err)
	}

	pieces := chunker.Split(text, s.opts.ChunkMaxSize, s.opts.ChunkOverlap)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("no chunks produced: %w", domain.ErrChunkingFailed)
	}

	for i, content := range pieces {
		c := domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			Index:      i,
			Content:    content,
		}
		if err := s.chunks.CreateChunk(ctx, &c); err != nil {
			return 0, fmt.Errorf("store chunk %d: %w", i, err)
		}
	}
	return len(pieces), nil
}

// GenerateEmbeddings vectorizes the document's stored chunks and moves it
// processing -> completed. Chunks that already have an embedding row are
// skipped, so a retried embed stage only pays for what is missing.
// Returns the number of embeddings written.
func (s *Service) GenerateEmbeddings(ctx context.Context, documentID string) (int, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document: %w", err)
	}

	release, err := s.acquire(ctx, documentID)
	if err != nil {
		return 0, err
	}
	defer release()

	if _, err := doc.Status.Transition(domain.StatusCompleted); err != nil {
		return 0, err
	}

	start := time.Now()
	generated, err := s.embed(ctx, documentID)
	metrics.PipelineStageDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PipelineDocumentsTotal.WithLabelValues("embed", "failed").Inc()
		s.markFailed(ctx, documentID, err)
		return 0, err
	}

	if err := s.docs.SetStatus(ctx, documentID, domain.StatusCompleted, ""); err != nil {
		return 0, fmt.Errorf("set status completed: %w", err)
	}

	metrics.PipelineDocumentsTotal.WithLabelValues("embed", "completed").Inc()

	logger.FromContext(ctx).Info("document embeddings generated",
		zap.String("document_id", documentID),
		zap.Int("embeddings", generated),
	)
	return generated, nil
}

func (s *Service) embed(ctx context.Context, documentID string) (int, error) {
	chunks, err := s.chunks.ListByDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document has no chunks: %w", domain.ErrChunkingFailed)
	}

	pending := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		has, err := s.chunks.HasEmbedding(ctx, c.ID)
		if err != nil {
			return 0, fmt.Errorf("check embedding %s: %w", c.ID, err)
		}
		if !has {
			pending = append(pending, c)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	vectors, err := s.embedAll(ctx, pending)
	if err != nil {
		return 0, err
	}

	// Persist in ascending chunk-index order; pending preserves it.
	for i, c := range pending {
		e := domain.Embedding{
			ID:      uuid.NewString(),
			ChunkID: c.ID,
			Vector:  vectors[i],
		}
		if err := s.chunks.CreateEmbedding(ctx, &e); err != nil {
			return 0, fmt.Errorf("store embedding for chunk %d: %w", c.Index, err)
		}
	}
	return len(pending), nil
}

// embedAll fans chunk texts out to a bounded worker pool. The vectors slice
// is positionally aligned with chunks; the first error wins.
func (s *Service) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	errs := make([]error, len(chunks))

	workers := s.opts.Workers
	if workers > len(chunks) {
		workers = len(chunks)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vectors[i], errs[i] = s.embedWithRetry(ctx, chunks[i].Content)
			}
		}()
	}
	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", chunks[i].Index, err)
		}
	}
	return vectors, nil
}

func (s *Service) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.Retries; attempt++ {
		result, err := s.embedder.Embed(ctx, text)
		if err == nil {
			return result.Embedding, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// acquire takes the document's advisory lease. A held lease means another
// pipeline run owns the document right now.
func (s *Service) acquire(ctx context.Context, documentID string) (func(), error) {
	key := leaseKey(documentID)
	acquired, err := s.locker.AcquireLease(ctx, key, s.opts.LeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire lease: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrDocumentBusy)
	}
	return func() {
		if err := s.locker.ReleaseLease(ctx, key); err != nil {
			logger.FromContext(ctx).Warn("release lease",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}, nil
}

// markFailed records the failure on the document. The write uses a context
// detached from the caller's cancellation so the status is not lost.
func (s *Service) markFailed(ctx context.Context, documentID string, cause error) {
	if err := s.docs.SetStatus(context.WithoutCancel(ctx), documentID, domain.StatusFailed, cause.Error()); err != nil {
		logger.FromContext(ctx).Error("mark document failed",
			zap.String("document_id", documentID), zap.Error(err))
	}
}

func leaseKey(documentID string) string {
	return domain.KeyPrefix + "lease:document:" + documentID
}
