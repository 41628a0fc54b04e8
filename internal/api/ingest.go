package api

import (
	"context"
	"io"
	"net/http"

	"github.com/awaqi/supportbot/internal/ingest"
	"github.com/awaqi/supportbot/internal/knowledge"
	"github.com/awaqi/supportbot/internal/log"
)

// Ingestor runs the document ingestion pipeline.
// Satisfied by *ingest.Pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, data []byte, filename, contentType, botID string) (documentID string, chunkCount int, err error)
}

// DocumentLister lists a tenant's ingested documents and chunk volume.
// Satisfied by *knowledge.Store.
type DocumentLister interface {
	ListDocuments(ctx context.Context, botID string) ([]knowledge.DocumentInfo, error)
	CountByBot(ctx context.Context, botID string) (int64, error)
}

// IngestHandler handles document upload and listing endpoints.
type IngestHandler struct {
	pipeline Ingestor
	docs     DocumentLister
	logger   log.Logger
}

// NewIngestHandler creates an ingest handler.
func NewIngestHandler(pipeline Ingestor, docs DocumentLister, logger log.Logger) *IngestHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &IngestHandler{pipeline: pipeline, docs: docs, logger: logger}
}

// RegisterRoutes registers ingest routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ingest", h.upload)
	mux.HandleFunc("GET /ingest/documents", h.listDocuments)
}

// IngestResponse is the upload response body.
type IngestResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DocumentID    string `json:"document_id"`
	ChunksCreated int    `json:"chunks_created"`
}

// upload accepts a multipart form with a PDF "file" field and an optional
// "bot_id" field overriding the caller's tenant.
func (h *IngestHandler) upload(w http.ResponseWriter, r *http.Request) {
	adminBot, ok := adminBotID(r)
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, CodeAuthRequired, "authorization required")
		return
	}

	// One extra MiB of form overhead beyond the document cap; the pipeline
	// enforces the exact byte limit.
	if err := r.ParseMultipartForm(ingest.MaxUploadSize + 1<<20); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	// Read one byte past the cap so the pipeline can reject oversize
	// uploads instead of silently truncating them.
	data, err := io.ReadAll(io.LimitReader(file, ingest.MaxUploadSize+1))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, CodeInvalidRequest, "failed to read upload")
		return
	}

	botID := r.FormValue("bot_id")
	if botID == "" {
		botID = adminBot
	}

	documentID, chunks, err := h.pipeline.Ingest(r.Context(), data, header.Filename, header.Header.Get("Content-Type"), botID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, IngestResponse{
		Success:       true,
		Message:       "Document processed successfully",
		DocumentID:    documentID,
		ChunksCreated: chunks,
	})
}

// ListDocumentsResponse is the document listing response body.
// TotalChunks is the number of stored chunk rows across all of the
// tenant's documents.
type ListDocumentsResponse struct {
	Items       []knowledge.DocumentInfo `json:"items"`
	TotalChunks int64                    `json:"total_chunks"`
}

// listDocuments returns the caller tenant's distinct documents.
func (h *IngestHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	botID, ok := adminBotID(r)
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, CodeAuthRequired, "authorization required")
		return
	}

	docs, err := h.docs.ListDocuments(r.Context(), botID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []knowledge.DocumentInfo{}
	}

	count, err := h.docs.CountByBot(r.Context(), botID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ListDocumentsResponse{Items: docs, TotalChunks: count})
}
