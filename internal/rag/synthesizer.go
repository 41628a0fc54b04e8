package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/awaqi/supportbot/internal/credential"
	"github.com/awaqi/supportbot/internal/knowledge"
	"github.com/awaqi/supportbot/internal/log"
	"github.com/awaqi/supportbot/internal/provider"
)

// ErrGenerationFailed indicates the language model invocation failed
// (network, auth, rate limit). Kept distinct from retrieval errors so
// callers can tell "no data" from "model unreachable".
var ErrGenerationFailed = errors.New("generation failed")

// Confidence placeholder heuristic: a fixed high value whenever anything
// was retrieved, zero otherwise. This is NOT a calibrated probability;
// tests pin these constants.
const (
	ConfidenceRetrieved = 0.95
	ConfidenceNoContext = 0.0
)

// generateTimeout bounds the model call so an unresponsive upstream cannot
// hang the request.
const generateTimeout = 60 * time.Second

// ChunkRetriever is the retrieval capability the synthesizer needs.
// Satisfied by *Retriever.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query, botID string, k int) ([]knowledge.Result, error)
}

// ChatFactory constructs a chat client for resolved credentials.
// In production this wraps provider.NewGemini.
type ChatFactory func(ctx context.Context, creds credential.Credentials) (provider.ChatClient, error)

// Answer is a synthesized response with citations.
type Answer struct {
	Response   string
	Sources    []string
	Confidence float64
}

// Synthesizer assembles prompts from retrieved chunks and invokes the
// tenant's chat model.
//
// Synthesizer is safe for concurrent use.
type Synthesizer struct {
	retriever ChunkRetriever
	resolver  CredentialResolver
	chats     ChatFactory
	logger    log.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(retriever ChunkRetriever, resolver CredentialResolver, chats ChatFactory, logger log.Logger) (*Synthesizer, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if chats == nil {
		return nil, fmt.Errorf("chat factory is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Synthesizer{retriever: retriever, resolver: resolver, chats: chats, logger: logger}, nil
}

// Answer answers message for botID using retrieved context. extraContext is
// inserted into the prompt verbatim; firstTurn controls the one-time
// bilingual greeting (the caller tracks conversation position, the server
// does not).
//
// Credential errors propagate with their own types; a model failure is
// wrapped in ErrGenerationFailed.
func (s *Synthesizer) Answer(ctx context.Context, message, extraContext, botID string, firstTurn bool) (Answer, error) {
	results, err := s.retriever.Retrieve(ctx, message, botID, DefaultTopK)
	if err != nil {
		return Answer{}, err
	}

	contents := make([]string, len(results))
	for i, res := range results {
		contents[i] = res.Chunk.Content
	}

	creds, err := s.resolver.Resolve(ctx, botID)
	if err != nil {
		return Answer{}, err
	}
	chat, err := s.chats(ctx, creds)
	if err != nil {
		return Answer{}, fmt.Errorf("creating chat client: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	response, err := chat.Complete(genCtx,
		buildSystemPrompt(firstTurn),
		buildUserPrompt(contents, extraContext, message))
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	answer := Answer{
		Response:   response,
		Sources:    collectSources(results),
		Confidence: ConfidenceNoContext,
	}
	if len(results) > 0 {
		answer.Confidence = ConfidenceRetrieved
	}

	s.logger.Debug("synthesized answer",
		"bot_id", botID,
		"chunks", len(results),
		"sources", len(answer.Sources))
	return answer, nil
}

// collectSources returns the distinct non-empty source values across
// results, sorted ascending. Always non-nil so it serializes as [].
func collectSources(results []knowledge.Result) []string {
	seen := make(map[string]struct{}, len(results))
	sources := make([]string, 0, len(results))
	for _, res := range results {
		src := res.Chunk.Metadata[knowledge.MetaSource]
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources
}
