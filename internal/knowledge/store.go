// Package knowledge implements the vector store for document chunks.
//
// Chunks live in the documents table: (id uuid, content text, metadata
// jsonb, embedding vector(768), created_at). Similarity search uses
// pgvector cosine distance with a JSONB containment filter; tenant
// isolation is a metadata filter on bot_id that callers must always apply.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/awaqi/supportbot/internal/log"
)

// Store manages chunk rows with vector search.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewStore creates a chunk Store.
func NewStore(pool *pgxpool.Pool, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// AddBatch writes chunks and their embeddings in a single transaction.
// len(vectors) must equal len(chunks). Either every chunk is persisted or
// none is: a failed batch leaves no partial document behind.
func (s *Store) AddBatch(ctx context.Context, chunks []Chunk, vectors []pgvector.Vector) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to write")
	}
	for i, vec := range vectors {
		if n := len(vec.Slice()); n != VectorDimension {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, n, VectorDimension)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", rbErr)
		}
	}()

	batch := &pgx.Batch{}
	for i, chunk := range chunks {
		metadataJSON, marshalErr := json.Marshal(chunk.Metadata)
		if marshalErr != nil {
			return fmt.Errorf("marshaling metadata for chunk %d: %w", i, marshalErr)
		}
		batch.Queue(`
			INSERT INTO documents (id, content, metadata, embedding)
			VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), chunk.Content, metadataJSON, vectors[i])
	}

	results := tx.SendBatch(ctx, batch)
	for i := range chunks {
		if _, execErr := results.Exec(); execErr != nil {
			_ = results.Close()
			return fmt.Errorf("inserting chunk %d: %w", i, execErr)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing chunk batch: %w", err)
	}

	s.logger.Debug("wrote chunk batch", "count", len(chunks))
	return nil
}

// Search returns the chunks nearest to the query vector, ordered by
// ascending cosine distance. Similarity is 1 - distance, clamped to [0,1].
// Ties keep the store's natural order; no extra tie-break is imposed.
//
// A query timeout is applied so a slow vector scan cannot block the
// request indefinitely.
func (s *Store) Search(ctx context.Context, query pgvector.Vector, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	// filterJSON is always produced by json.Marshal and bound as a
	// parameter; the JSONB @> operator never sees raw user input.
	filterJSON, err := json.Marshal(cfg.filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling filter: %w", err)
	}

	rows, err := s.pool.Query(queryCtx, `
		SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE metadata @> $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		query, filterJSON, cfg.topK)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var content string
		var metadataJSON []byte
		var similarity float32
		if err := rows.Scan(&content, &metadataJSON, &similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}

		var metadata map[string]string
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			s.logger.Warn("failed to parse chunk metadata", "error", err)
			metadata = make(map[string]string)
		}

		results = append(results, Result{
			Chunk:      Chunk{Content: content, Metadata: metadata},
			Similarity: clampSimilarity(similarity),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}

	return results, nil
}

// ListDocuments returns the distinct logical documents owned by botID,
// newest first. created_at is the earliest chunk write of the upload.
func (s *Store) ListDocuments(ctx context.Context, botID string) ([]DocumentInfo, error) {
	if botID == "" {
		return nil, fmt.Errorf("bot ID is required")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT metadata->>'document_id', metadata->>'source', min(created_at)
		FROM documents
		WHERE metadata->>'bot_id' = $1
		GROUP BY metadata->>'document_id', metadata->>'source'
		ORDER BY min(created_at) DESC`,
		botID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentInfo
	for rows.Next() {
		var doc DocumentInfo
		if err := rows.Scan(&doc.DocumentID, &doc.Source, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading document rows: %w", err)
	}

	return docs, nil
}

// CountByBot returns the number of chunks stored for botID.
func (s *Store) CountByBot(ctx context.Context, botID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE metadata->>'bot_id' = $1`, botID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// clampSimilarity bounds 1 - cosine_distance to [0,1]. Distances slightly
// above 1 occur for non-normalized vectors and would otherwise surface as
// negative similarity.
func clampSimilarity(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
