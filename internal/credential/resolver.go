package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/awaqi/supportbot/internal/log"
)

// ConfigStore is the subset of Store the Resolver needs. Defined by the
// consumer so tests can substitute a fake.
type ConfigStore interface {
	GetActive(ctx context.Context, botID string) (*Record, error)
}

// Credentials is everything needed to construct chat and embedding clients
// for one tenant.
type Credentials struct {
	Provider string
	Model    string
	APIKey   string
}

// Resolver resolves which provider, model, and API key a bot uses.
//
// Resolution order:
//  1. The tenant's stored active configuration.
//  2. The process-wide fallback API key and default model.
//
// Only ErrNotFound from the store triggers the fallback; any other store
// error propagates.
type Resolver struct {
	store ConfigStore

	// fallbackAPIKey and defaultModel come from process configuration
	// (GEMINI_API_KEY / GOOGLE_API_KEY and SUPPORTBOT_DEFAULT_MODEL).
	fallbackAPIKey string
	defaultModel   string

	logger log.Logger
}

// NewResolver creates a credential Resolver. fallbackAPIKey may be empty,
// in which case unconfigured tenants get ErrCredentialsNotConfigured.
func NewResolver(store ConfigStore, fallbackAPIKey, defaultModel string, logger log.Logger) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if defaultModel == "" {
		return nil, fmt.Errorf("default model is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Resolver{
		store:          store,
		fallbackAPIKey: fallbackAPIKey,
		defaultModel:   defaultModel,
		logger:         logger,
	}, nil
}

// Resolve returns the credentials for botID.
func (r *Resolver) Resolve(ctx context.Context, botID string) (Credentials, error) {
	rec, err := r.store.GetActive(ctx, botID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return r.fallback(botID)
		}
		return Credentials{}, fmt.Errorf("resolving credentials for bot %q: %w", botID, err)
	}

	if rec.Provider != SupportedProvider {
		return Credentials{}, fmt.Errorf("%w: %q (only %q is supported)",
			ErrUnsupportedProvider, rec.Provider, SupportedProvider)
	}

	model := trimModel(rec.Model)
	if model == "" {
		model = r.defaultModel
	}

	return Credentials{
		Provider: rec.Provider,
		Model:    model,
		APIKey:   rec.APIKey,
	}, nil
}

// fallback builds credentials from process-wide defaults.
func (r *Resolver) fallback(botID string) (Credentials, error) {
	if r.fallbackAPIKey == "" {
		return Credentials{}, fmt.Errorf("%w: bot %q has no stored configuration and no environment API key is set",
			ErrCredentialsNotConfigured, botID)
	}

	r.logger.Debug("using environment fallback credentials", "bot_id", botID, "model", r.defaultModel)
	return Credentials{
		Provider: SupportedProvider,
		Model:    r.defaultModel,
		APIKey:   r.fallbackAPIKey,
	}, nil
}
