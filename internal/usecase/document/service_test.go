package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// --- Mocks ---

type mockRepository struct {
	created []domain.Document
	byID    map[string]domain.Document
	deleted []string
}

func (m *mockRepository) Create(_ context.Context, doc *domain.Document) error {
	m.created = append(m.created, *doc)
	if m.byID == nil {
		m.byID = map[string]domain.Document{}
	}
	m.byID[doc.ID] = *doc
	return nil
}

func (m *mockRepository) Get(_ context.Context, id string) (domain.Document, error) {
	doc, ok := m.byID[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *mockRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range m.byID {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepository) ListAll(_ context.Context) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range m.byID {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.byID, id)
	return nil
}

type mockChunkRepo struct {
	deletedDocs []string
}

func (m *mockChunkRepo) DeleteByDocument(_ context.Context, documentID string) error {
	m.deletedDocs = append(m.deletedDocs, documentID)
	return nil
}

type mockBlobStore struct {
	stored  map[string][]byte
	removed []string
	putErr  error
}

func (m *mockBlobStore) Put(_ context.Context, path string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	if m.stored == nil {
		m.stored = map[string][]byte{}
	}
	m.stored[path] = data
	return nil
}

func (m *mockBlobStore) Remove(_ context.Context, path string) error {
	m.removed = append(m.removed, path)
	return nil
}

type mockPipeline struct {
	repo       *mockRepository
	processErr error
	embedErr   error
	processed  []string
	embedded   []string
}

func (m *mockPipeline) Process(_ context.Context, documentID, _ string, _ []byte) (int, error) {
	if m.processErr != nil {
		m.fail(documentID, m.processErr)
		return 0, m.processErr
	}
	m.processed = append(m.processed, documentID)
	return 3, nil
}

func (m *mockPipeline) GenerateEmbeddings(_ context.Context, documentID string) (int, error) {
	if m.embedErr != nil {
		m.fail(documentID, m.embedErr)
		return 0, m.embedErr
	}
	m.embedded = append(m.embedded, documentID)
	if doc, ok := m.repo.byID[documentID]; ok {
		doc.Status = domain.StatusCompleted
		m.repo.byID[documentID] = doc
	}
	return 3, nil
}

func (m *mockPipeline) fail(documentID string, cause error) {
	if doc, ok := m.repo.byID[documentID]; ok {
		doc.Status = domain.StatusFailed
		doc.ErrorMessage = cause.Error()
		m.repo.byID[documentID] = doc
	}
}

// --- Tests ---

func uploadReq() UploadRequest {
	return UploadRequest{
		OwnerID:   "u1",
		Filename:  "notes.txt",
		MediaType: "text/plain",
		Data:      []byte("The first fact. The second fact."),
	}
}

func TestUpload_RunsFullIngestion(t *testing.T) {
	repo := &mockRepository{}
	blobs := &mockBlobStore{}
	pipe := &mockPipeline{repo: repo}
	svc := New(repo, &mockChunkRepo{}, blobs, pipe, 0)

	doc, err := svc.Upload(context.Background(), uploadReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Status != domain.StatusCompleted {
		t.Errorf("expected completed after ingestion, got %s", doc.Status)
	}
	if len(pipe.processed) != 1 || len(pipe.embedded) != 1 {
		t.Errorf("pipeline stages not run: %+v", pipe)
	}
	if len(blobs.stored) != 1 {
		t.Fatalf("blob not stored")
	}
	for path := range blobs.stored {
		if !strings.HasPrefix(path, "u1/") || !strings.HasSuffix(path, "-notes.txt") {
			t.Errorf("unexpected storage path: %s", path)
		}
	}
}

func TestUpload_TooLarge(t *testing.T) {
	svc := New(&mockRepository{}, &mockChunkRepo{}, &mockBlobStore{}, &mockPipeline{}, 8)

	req := uploadReq() // payload longer than 8 bytes
	_, err := svc.Upload(context.Background(), req)
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestUpload_UnsupportedMediaType(t *testing.T) {
	repo := &mockRepository{}
	blobs := &mockBlobStore{}
	svc := New(repo, &mockChunkRepo{}, blobs, &mockPipeline{repo: repo}, 0)

	req := uploadReq()
	req.MediaType = "video/mp4"
	_, err := svc.Upload(context.Background(), req)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if len(blobs.stored) != 0 || len(repo.created) != 0 {
		t.Error("nothing should be stored for a rejected upload")
	}
}

func TestUpload_PipelineFailureRecordedNotReturned(t *testing.T) {
	repo := &mockRepository{}
	pipe := &mockPipeline{repo: repo, processErr: domain.ErrChunkingFailed}
	svc := New(repo, &mockChunkRepo{}, &mockBlobStore{}, pipe, 0)

	doc, err := svc.Upload(context.Background(), uploadReq())
	if err != nil {
		t.Fatalf("upload itself must succeed: %v", err)
	}
	if doc.Status != domain.StatusFailed {
		t.Errorf("expected failed status, got %s", doc.Status)
	}
	if doc.ErrorMessage == "" {
		t.Error("failure cause not recorded on the document")
	}
}

func TestDelete_Cascades(t *testing.T) {
	repo := &mockRepository{byID: map[string]domain.Document{
		"d1": {ID: "d1", OwnerID: "u1", StoragePath: "u1/123-notes.txt"},
	}}
	chunks := &mockChunkRepo{}
	blobs := &mockBlobStore{}
	svc := New(repo, chunks, blobs, &mockPipeline{repo: repo}, 0)

	if err := svc.Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks.deletedDocs) != 1 || chunks.deletedDocs[0] != "d1" {
		t.Errorf("chunk cascade missing: %v", chunks.deletedDocs)
	}
	if len(blobs.removed) != 1 || blobs.removed[0] != "u1/123-notes.txt" {
		t.Errorf("blob not removed: %v", blobs.removed)
	}
	if len(repo.deleted) != 1 {
		t.Errorf("document row not deleted: %v", repo.deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := New(&mockRepository{}, &mockChunkRepo{}, &mockBlobStore{}, &mockPipeline{}, 0)
	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestList_ByOwnerAndAll(t *testing.T) {
	repo := &mockRepository{byID: map[string]domain.Document{
		"d1": {ID: "d1", OwnerID: "u1"},
		"d2": {ID: "d2", OwnerID: "u2"},
	}}
	svc := New(repo, &mockChunkRepo{}, &mockBlobStore{}, &mockPipeline{repo: repo}, 0)

	mine, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "d1" {
		t.Errorf("unexpected owner listing: %+v", mine)
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 documents, got %d", len(all))
	}
}

func TestStoragePath_SanitizesFilename(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	path := storagePath("u1", "../weird name?.pdf", now)
	if strings.Contains(path, "..") || strings.Contains(path, " ") || strings.Contains(path, "?") {
		t.Errorf("path not sanitized: %s", path)
	}
	if !strings.HasPrefix(path, "u1/1700000000000-") {
		t.Errorf("unexpected prefix: %s", path)
	}
}
