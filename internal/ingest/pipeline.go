// Package ingest implements the document ingestion pipeline:
// uploaded PDF → per-page text → overlapping chunks → embeddings →
// one batched vector-store write.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/awaqi/supportbot/internal/credential"
	"github.com/awaqi/supportbot/internal/knowledge"
	"github.com/awaqi/supportbot/internal/log"
	"github.com/awaqi/supportbot/internal/provider"
)

var (
	// ErrInvalidFileType indicates the upload is not a PDF.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrFileTooLarge indicates the upload exceeds MaxUploadSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyDocument indicates the PDF contains no extractable text, so
	// nothing could be indexed.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

const (
	// PDFContentType is the only accepted upload media type.
	PDFContentType = "application/pdf"

	// MaxUploadSize caps uploads at 10 MiB.
	MaxUploadSize = 10 << 20

	// ChunkSize and ChunkOverlap configure the splitter, in characters.
	ChunkSize    = 2000
	ChunkOverlap = 200

	// parseTimeout bounds PDF text extraction so a pathological file
	// cannot hang the request.
	parseTimeout = 30 * time.Second

	// embedTimeout bounds embedding generation for one upload.
	embedTimeout = 2 * time.Minute
)

// CredentialResolver resolves embedding credentials for a tenant.
// Satisfied by *credential.Resolver.
type CredentialResolver interface {
	Resolve(ctx context.Context, botID string) (credential.Credentials, error)
}

// ChunkWriter persists a batch of chunks atomically.
// Satisfied by *knowledge.Store.
type ChunkWriter interface {
	AddBatch(ctx context.Context, chunks []knowledge.Chunk, vectors []pgvector.Vector) error
}

// EmbedderFactory constructs an embedding client for resolved credentials.
// In production this wraps provider.NewGemini.
type EmbedderFactory func(ctx context.Context, creds credential.Credentials) (provider.EmbeddingClient, error)

// Pipeline ingests uploaded PDFs into the per-tenant vector index.
//
// Pipeline is stateless between requests and safe for concurrent use.
// Concurrent ingestions may interleave freely: every upload gets its own
// document ID and chunk rows never conflict.
type Pipeline struct {
	store     ChunkWriter
	resolver  CredentialResolver
	embedders EmbedderFactory
	splitter  *Splitter
	logger    log.Logger
}

// NewPipeline creates an ingestion Pipeline.
func NewPipeline(store ChunkWriter, resolver CredentialResolver, embedders EmbedderFactory, logger log.Logger) (*Pipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if embedders == nil {
		return nil, fmt.Errorf("embedder factory is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	splitter, err := NewSplitter(ChunkSize, ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("creating splitter: %w", err)
	}

	return &Pipeline{
		store:     store,
		resolver:  resolver,
		embedders: embedders,
		splitter:  splitter,
		logger:    logger,
	}, nil
}

// Ingest validates and indexes one uploaded PDF for botID, returning the
// generated document ID and the number of chunks written.
//
// Validation happens before any processing. The chunk batch is written in
// one transaction: a failure at any step means zero chunks persisted, never
// a document ID silently referencing nothing.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, filename, contentType, botID string) (string, int, error) {
	if contentType != PDFContentType {
		return "", 0, fmt.Errorf("%w: %q (expected %q)", ErrInvalidFileType, contentType, PDFContentType)
	}
	if len(data) > MaxUploadSize {
		return "", 0, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), MaxUploadSize)
	}
	if botID == "" {
		return "", 0, fmt.Errorf("bot ID is required")
	}

	text, err := p.parse(ctx, data)
	if err != nil {
		return "", 0, err
	}

	pieces := p.splitter.Split(text)
	if len(pieces) == 0 {
		return "", 0, ErrEmptyDocument
	}

	documentID := uuid.NewString()
	chunks := make([]knowledge.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = knowledge.Chunk{
			Content: piece,
			Metadata: map[string]string{
				knowledge.MetaSource:     filename,
				knowledge.MetaBotID:      botID,
				knowledge.MetaDocumentID: documentID,
			},
		}
	}

	vectors, err := p.embedChunks(ctx, botID, chunks)
	if err != nil {
		return "", 0, err
	}

	if err := p.store.AddBatch(ctx, chunks, vectors); err != nil {
		return "", 0, fmt.Errorf("persisting chunks: %w", err)
	}

	p.logger.Info("ingested document",
		"bot_id", botID,
		"document_id", documentID,
		"source", filename,
		"chunks", len(chunks))
	return documentID, len(chunks), nil
}

// parse writes the upload to a scoped temporary file, extracts its text,
// and removes the file on every exit path.
func (p *Pipeline) parse(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "supportbot-upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			p.logger.Warn("failed to remove temp file", "path", tmpPath, "error", rmErr)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	parseCtx, cancel := context.WithTimeout(ctx, parseTimeout)
	defer cancel()

	text, err := extractPDFText(parseCtx, tmpPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}
	return text, nil
}

// embedChunks resolves the tenant's embedding client and embeds every
// chunk's content.
func (p *Pipeline) embedChunks(ctx context.Context, botID string, chunks []knowledge.Chunk) ([]pgvector.Vector, error) {
	creds, err := p.resolver.Resolve(ctx, botID)
	if err != nil {
		return nil, err
	}

	embedder, err := p.embedders(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vectors := make([]pgvector.Vector, len(chunks))
	for i, chunk := range chunks {
		values, err := embedder.Embed(embedCtx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		vectors[i] = pgvector.NewVector(values)
	}
	return vectors, nil
}
