// Package document handles the document lifecycle around the pipeline:
// upload (validate, store blob, create row, ingest), listing, and cascade
// deletion.
package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kognita-cloud/ragdex/internal/domain"
	"github.com/kognita-cloud/ragdex/internal/logger"
	"github.com/kognita-cloud/ragdex/internal/parser"
)

// UploadRequest carries one file upload.
type UploadRequest struct {
	OwnerID         string
	Filename        string
	MediaType       string
	Data            []byte
	EmployeeVisible bool
	CustomerVisible bool
}

// Service manages documents.
type Service struct {
	repo     Repository
	chunks   ChunkRepo
	blobs    BlobStore
	pipeline Pipeline
	maxBytes int64
}

// New creates a document service.
func New(repo Repository, chunks ChunkRepo, blobs BlobStore, pipeline Pipeline, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Service{repo: repo, chunks: chunks, blobs: blobs, pipeline: pipeline, maxBytes: maxBytes}
}

// Upload validates the file, stores its bytes, creates the document row, and
// runs the ingestion pipeline synchronously. A pipeline failure is recorded
// on the returned document (status failed), not returned as an error; the
// upload itself succeeded.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (domain.Document, error) {
	if int64(len(req.Data)) > s.maxBytes {
		return domain.Document{}, fmt.Errorf("file is %d bytes, limit %d: %w",
			len(req.Data), s.maxBytes, domain.ErrFileTooLarge)
	}
	if len(req.Data) == 0 {
		return domain.Document{}, domain.ErrEmptyContent
	}
	if !parser.Supported(req.MediaType) {
		return domain.Document{}, fmt.Errorf("media type %q: %w", req.MediaType, domain.ErrUnsupportedFormat)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		ID:              uuid.NewString(),
		OwnerID:         req.OwnerID,
		Filename:        req.Filename,
		MediaType:       req.MediaType,
		SizeBytes:       int64(len(req.Data)),
		StoragePath:     storagePath(req.OwnerID, req.Filename, now),
		Status:          domain.StatusUploaded,
		OwnerVisible:    true,
		EmployeeVisible: req.EmployeeVisible,
		CustomerVisible: req.CustomerVisible,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.blobs.Put(ctx, doc.StoragePath, req.Data); err != nil {
		return domain.Document{}, fmt.Errorf("store upload: %w", err)
	}
	if err := s.repo.Create(ctx, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("create document: %w", err)
	}

	if err := s.ingest(ctx, doc.ID, req.MediaType, req.Data); err != nil {
		logger.FromContext(ctx).Warn("ingestion failed",
			zap.String("document_id", doc.ID), zap.Error(err))
	}

	updated, err := s.repo.Get(ctx, doc.ID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("reload document: %w", err)
	}
	return updated, nil
}

func (s *Service) ingest(ctx context.Context, documentID, mediaType string, data []byte) error {
	if _, err := s.pipeline.Process(ctx, documentID, mediaType, data); err != nil {
		return err
	}
	if _, err := s.pipeline.GenerateEmbeddings(ctx, documentID); err != nil {
		return err
	}
	return nil
}

// Get retrieves a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns the owner's documents, or every document when ownerID is empty.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	var (
		docs []domain.Document
		err  error
	)
	if ownerID == "" {
		docs, err = s.repo.ListAll(ctx)
	} else {
		docs, err = s.repo.ListByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes the document with its chunks, embeddings, and stored bytes.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := s.chunks.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.blobs.Remove(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.FromContext(ctx).Info("document deleted", zap.String("document_id", id))
	return nil
}

// storagePath builds the blob path: <owner>/<unix-millis>-<safe filename>.
func storagePath(ownerID, filename string, now time.Time) string {
	base := filepath.Base(filename)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	return fmt.Sprintf("%s/%d-%s", ownerID, now.UnixMilli(), base)
}
