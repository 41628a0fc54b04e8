// Package provider defines the narrow model-client interfaces the pipeline
// depends on, plus the Gemini implementation.
//
// The pipeline never touches provider SDK types directly: it sees only
// EmbeddingClient and ChatClient, so the provider family can be swapped
// without touching ingestion, retrieval, or answering code.
package provider

import "context"

// EmbeddingClient turns text into a fixed-dimension vector.
type EmbeddingClient interface {
	// Embed returns the embedding for text. The vector dimension matches
	// knowledge.VectorDimension (768).
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatClient generates a completion for a prompt.
type ChatClient interface {
	// Complete invokes the model with a system instruction and a user
	// prompt, returning the generated text.
	Complete(ctx context.Context, system, prompt string) (string, error)
}
