// Package rag implements retrieval and answer synthesis: a query is
// embedded, the tenant's nearest chunks are fetched, and a language model
// is prompted with them to produce a grounded answer with citations.
package rag

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/awaqi/supportbot/internal/credential"
	"github.com/awaqi/supportbot/internal/knowledge"
	"github.com/awaqi/supportbot/internal/log"
	"github.com/awaqi/supportbot/internal/provider"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Searcher is the vector-search capability the retriever needs.
// Satisfied by *knowledge.Store.
type Searcher interface {
	Search(ctx context.Context, query pgvector.Vector, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// CredentialResolver resolves model credentials for a tenant.
// Satisfied by *credential.Resolver.
type CredentialResolver interface {
	Resolve(ctx context.Context, botID string) (credential.Credentials, error)
}

// EmbedderFactory constructs an embedding client for resolved credentials.
type EmbedderFactory func(ctx context.Context, creds credential.Credentials) (provider.EmbeddingClient, error)

// Retriever embeds a query and performs tenant-scoped similarity search.
//
// Retriever is safe for concurrent use.
type Retriever struct {
	store     Searcher
	resolver  CredentialResolver
	embedders EmbedderFactory
	logger    log.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(store Searcher, resolver CredentialResolver, embedders EmbedderFactory, logger log.Logger) (*Retriever, error) {
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
	return &Retriever{store: store, resolver: resolver, embedders: embedders, logger: logger}, nil
}

// Retrieve returns the top k chunks for query, restricted to botID.
// The bot_id filter is mandatory: results never contain another tenant's
// chunks. Results come back ordered by descending similarity.
func (r *Retriever) Retrieve(ctx context.Context, query, botID string, k int) ([]knowledge.Result, error) {
	if botID == "" {
		return nil, fmt.Errorf("bot ID is required")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	creds, err := r.resolver.Resolve(ctx, botID)
	if err != nil {
		return nil, err
	}

	embedder, err := r.embedders(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}

	values, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.store.Search(ctx, pgvector.NewVector(values),
		knowledge.WithTopK(k),
		knowledge.WithFilter(knowledge.MetaBotID, botID))
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	r.logger.Debug("retrieved chunks", "bot_id", botID, "k", k, "hits", len(results))
	return results, nil
}
