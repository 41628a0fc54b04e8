// Package credential manages per-tenant model provider configuration.
//
// Each bot may store which provider, model, and API key its requests use.
// The Store persists those records in PostgreSQL with the API key encrypted
// at rest; the Resolver turns a bot ID into usable credentials, falling
// back to process-wide environment defaults when the tenant has none.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awaqi/supportbot/internal/log"
	"github.com/awaqi/supportbot/internal/security"
)

var (
	// ErrNotFound indicates no active configuration exists for the bot.
	// Callers recover from this by falling back to environment defaults;
	// every other store error propagates.
	ErrNotFound = errors.New("model configuration not found")

	// ErrUnsupportedProvider indicates a configuration names a provider
	// this backend cannot talk to.
	ErrUnsupportedProvider = errors.New("unsupported model provider")

	// ErrCredentialsNotConfigured indicates neither a tenant configuration
	// nor an environment fallback API key is available.
	ErrCredentialsNotConfigured = errors.New("model credentials not configured")
)

// pgUndefinedTable is the PostgreSQL error code for "relation does not
// exist" (42P01). Treated the same as no rows: the table not being
// provisioned yet means no tenant has configured anything.
const pgUndefinedTable = "42P01"

// Record is a stored tenant model configuration. APIKey is plaintext in
// memory only; at rest it is encrypted by the store's cipher.
type Record struct {
	BotID     string
	Provider  string
	APIKey    string
	Model     string
	IsActive  bool
	CreatedAt time.Time
}

// Store persists tenant model configurations in PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	cipher security.Cipher
	logger log.Logger
}

// NewStore creates a configuration Store.
func NewStore(pool *pgxpool.Pool, cipher security.Cipher, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if cipher == nil {
		return nil, fmt.Errorf("cipher is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, cipher: cipher, logger: logger}, nil
}

// Upsert writes or overwrites the configuration for (botID, provider,
// model), encrypting the API key before persistence. The row is marked
// active; created_at advances so GetActive picks the latest write.
func (s *Store) Upsert(ctx context.Context, botID, provider, apiKey, model string) error {
	if botID == "" {
		return fmt.Errorf("bot ID is required")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	encrypted, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return fmt.Errorf("encrypting API key: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO bot_model_configs (bot_id, provider, api_key_encrypted, model, is_active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (bot_id, provider, model) DO UPDATE SET
			api_key_encrypted = EXCLUDED.api_key_encrypted,
			is_active = true,
			created_at = now(),
			updated_at = now()`,
		botID, provider, encrypted, model)
	if err != nil {
		return fmt.Errorf("upserting model configuration: %w", err)
	}

	s.logger.Debug("stored model configuration", "bot_id", botID, "provider", provider, "model", model)
	return nil
}

// GetActive returns the most recently created active configuration for the
// bot and the supported provider, with the API key decrypted.
//
// Returns ErrNotFound when no such row exists or the table has not been
// provisioned. Connection failures and every other error propagate
// unmodified so callers can tell "no data" from "store down".
func (s *Store) GetActive(ctx context.Context, botID string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT bot_id, provider, api_key_encrypted, model, is_active, created_at
		FROM bot_model_configs
		WHERE bot_id = $1 AND provider = $2 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`,
		botID, SupportedProvider)

	var rec Record
	var encrypted string
	err := row.Scan(&rec.BotID, &rec.Provider, &encrypted, &rec.Model, &rec.IsActive, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
			s.logger.Warn("bot_model_configs table missing, treating as unconfigured")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying model configuration: %w", err)
	}

	rec.APIKey, err = s.cipher.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypting API key for bot %q: %w", botID, err)
	}

	return &rec, nil
}

// SupportedProvider mirrors config.SupportedProvider without importing the
// config package from this storage layer.
const SupportedProvider = "google"

// trimModel normalizes a stored model identifier.
func trimModel(model string) string {
	return strings.TrimSpace(model)
}
