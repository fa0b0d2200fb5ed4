// Package chi exposes the HTTP API: document upload and lifecycle, the two
// ingestion stage triggers, question answering, history, health, and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kognita-cloud/ragdex/internal/domain"
	documentuc "github.com/kognita-cloud/ragdex/internal/usecase/document"
	healthuc "github.com/kognita-cloud/ragdex/internal/usecase/health"
	queryuc "github.com/kognita-cloud/ragdex/internal/usecase/query"
)

// Error codes exposed to clients.
const (
	codeBadRequest         = "bad_request"
	codeDocumentNotFound   = "document_not_found"
	codeUnsupportedFormat  = "unsupported_format"
	codeEmptyContent       = "empty_content"
	codeFileTooLarge       = "file_too_large"
	codeInvalidTransition  = "invalid_transition"
	codeDocumentBusy       = "document_busy"
	codeChunkingFailed     = "chunking_failed"
	codeNoVisibleDocuments = "no_visible_documents"
	codeNoSearchableChunks = "no_searchable_chunks"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeGenerationProvider = "generation_provider_error"
	codeInternalError      = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Pipeline is the stage-trigger contract of the pipeline usecase.
type Pipeline interface {
	Process(ctx context.Context, documentID, mediaType string, data []byte) (int, error)
	GenerateEmbeddings(ctx context.Context, documentID string) (int, error)
}

// Server routes HTTP requests to the usecase layer.
type Server struct {
	documents     *documentuc.Service
	pipeline      Pipeline
	query         *queryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxUpload     int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	pipeline Pipeline,
	query *queryuc.Service,
	health *healthuc.Service,
	maxUpload int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents: documents,
		pipeline:  pipeline,
		query:     query,
		health:    health,
		logger:    logger,
		maxUpload: maxUpload,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, codeUnsupportedFormat),
		sentinelHandler(domain.ErrEmptyContent, http.StatusBadRequest, codeEmptyContent),
		sentinelHandler(domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, codeFileTooLarge),
		sentinelHandler(domain.ErrInvalidTransition, http.StatusConflict, codeInvalidTransition),
		sentinelHandler(domain.ErrDocumentBusy, http.StatusConflict, codeDocumentBusy),
		sentinelHandler(domain.ErrChunkingFailed, http.StatusUnprocessableEntity, codeChunkingFailed),
		sentinelHandler(domain.ErrNoVisibleDocuments, http.StatusNotFound, codeNoVisibleDocuments),
		sentinelHandler(domain.ErrNoSearchableChunks, http.StatusNotFound, codeNoSearchableChunks),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, codeGenerationProvider),
	}
	return s
}

// Routes mounts every API route on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.uploadDocument)
		r.Get("/documents", s.listDocuments)
		r.Get("/documents/{documentID}", s.getDocument)
		r.Delete("/documents/{documentID}", s.deleteDocument)
		r.Post("/documents/{documentID}/process", s.processDocument)
		r.Post("/documents/{documentID}/embeddings", s.generateEmbeddings)
		r.Post("/query", s.askQuestion)
		r.Get("/history", s.getHistory)
	})
	r.Get("/healthz", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// uploadDocument handles POST /api/v1/documents (multipart).
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	ownerID := r.FormValue("owner_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "owner_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "read upload: "+err.Error())
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if override := r.FormValue("media_type"); override != "" {
		mediaType = override
	}

	doc, err := s.documents.Upload(r.Context(), documentuc.UploadRequest{
		OwnerID:         ownerID,
		Filename:        header.Filename,
		MediaType:       mediaType,
		Data:            data,
		EmployeeVisible: parseBool(r.FormValue("employee_visible")),
		CustomerVisible: parseBool(r.FormValue("customer_visible")),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, documentToResponse(doc))
}

// listDocuments handles GET /api/v1/documents.
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i, d := range docs {
		items[i] = documentToResponse(d)
	}
	writeJSON(w, http.StatusOK, documentListResponse{Items: items, Total: len(items)})
}

// getDocument handles GET /api/v1/documents/{documentID}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// deleteDocument handles DELETE /api/v1/documents/{documentID}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// processDocument handles POST /api/v1/documents/{documentID}/process.
// The body is the raw file bytes; X-Media-Type names the format.
func (s *Server) processDocument(w http.ResponseWriter, r *http.Request) {
	mediaType := r.Header.Get("X-Media-Type")
	if mediaType == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "X-Media-Type header is required")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge, "request body too large")
		return
	}

	stored, err := s.pipeline.Process(r.Context(), chi.URLParam(r, "documentID"), mediaType, data)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{Success: true, ChunksStored: stored})
}

// generateEmbeddings handles POST /api/v1/documents/{documentID}/embeddings.
func (s *Server) generateEmbeddings(w http.ResponseWriter, r *http.Request) {
	generated, err := s.pipeline.GenerateEmbeddings(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, embeddingsResponse{Success: true, EmbeddingsGenerated: generated})
}

// askQuestion handles POST /api/v1/query.
func (s *Server) askQuestion(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "question is required")
		return
	}
	if req.RequesterID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "requester_id is required")
		return
	}

	mode := queryuc.ModeEmployee
	if req.CustomerMode {
		mode = queryuc.ModeCustomer
	}

	ans, err := s.query.Ask(r.Context(), req.Question, req.RequesterID, mode)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{Answer: ans.Answer, Sources: ans.Sources})
}

// getHistory handles GET /api/v1/history.
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	requesterID := r.URL.Query().Get("requester_id")
	if requesterID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "requester_id is required")
		return
	}

	records, err := s.query.History(r.Context(), requesterID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]historyItem, len(records))
	for i, rec := range records {
		items[i] = historyItem{
			ID:        rec.ID,
			Question:  rec.Question,
			Answer:    rec.Answer,
			Sources:   rec.Sources,
			CreatedAt: rec.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, historyResponse{Items: items, Total: len(items)})
}

// healthCheck handles GET /healthz.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrUnsupportedFormat,
		domain.ErrEmptyContent,
		domain.ErrFileTooLarge,
		domain.ErrInvalidTransition,
		domain.ErrDocumentBusy,
		domain.ErrChunkingFailed,
		domain.ErrNoVisibleDocuments,
		domain.ErrNoSearchableChunks,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
