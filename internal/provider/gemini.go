package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/awaqi/supportbot/internal/credential"
	"github.com/awaqi/supportbot/internal/knowledge"
)

// EmbeddingDimension is the vector width requested from the embedding
// model, pinned to the documents table schema. text-embedding-004
// natively outputs 768; OutputDimensionality is set explicitly so a model
// change cannot silently break the pgvector schema.
const EmbeddingDimension int32 = knowledge.VectorDimension

// chatTemperature keeps support answers close to the provided context.
const chatTemperature float32 = 0.2

// Gemini implements EmbeddingClient and ChatClient against the Gemini API
// with a per-tenant API key.
//
// Gemini is safe for concurrent use.
type Gemini struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
}

// NewGemini constructs a Gemini client from resolved tenant credentials.
// embeddingModel is the process-wide embedding model (all tenants share
// one vector space; only the chat model is tenant-configurable).
func NewGemini(ctx context.Context, creds credential.Credentials, embeddingModel string) (*Gemini, error) {
	if creds.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if embeddingModel == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  creds.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &Gemini{
		client:         client,
		chatModel:      creds.Model,
		embeddingModel: embeddingModel,
	}, nil
}

// Embed implements EmbeddingClient.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := EmbeddingDimension
	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel,
		genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &dim})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Embeddings[0].Values, nil
}

// Complete implements ChatClient.
func (g *Gemini) Complete(ctx context.Context, system, prompt string) (string, error) {
	temp := chatTemperature
	resp, err := g.client.Models.GenerateContent(ctx, g.chatModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:       &temp,
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		})
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if text := strings.TrimSpace(resp.Text()); text != "" {
		return text, nil
	}

	// No dedicated text part in the response; coerce whatever came back so
	// the caller still gets something inspectable.
	return fmt.Sprintf("%v", resp), nil
}
