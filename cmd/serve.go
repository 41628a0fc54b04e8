package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/awaqi/supportbot/internal/api"
	"github.com/awaqi/supportbot/internal/config"
	"github.com/awaqi/supportbot/internal/credential"
	"github.com/awaqi/supportbot/internal/ingest"
	"github.com/awaqi/supportbot/internal/knowledge"
	"github.com/awaqi/supportbot/internal/log"
	"github.com/awaqi/supportbot/internal/provider"
	"github.com/awaqi/supportbot/internal/rag"
	"github.com/awaqi/supportbot/internal/security"
)

// runServe wires the full pipeline and starts the HTTP server.
func runServe(logger log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Addr
	if len(os.Args) > 2 {
		addr = os.Args[2]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	cipher, err := security.NewAESGCM(cfg.EncryptionKeyBytes())
	if err != nil {
		return fmt.Errorf("creating cipher: %w", err)
	}

	credStore, err := credential.NewStore(pool, cipher, logger.With("component", "credential"))
	if err != nil {
		return fmt.Errorf("creating credential store: %w", err)
	}
	resolver, err := credential.NewResolver(credStore, cfg.GeminiAPIKey, cfg.DefaultModel, logger.With("component", "resolver"))
	if err != nil {
		return fmt.Errorf("creating credential resolver: %w", err)
	}

	chunkStore, err := knowledge.NewStore(pool, logger.With("component", "knowledge"))
	if err != nil {
		return fmt.Errorf("creating chunk store: %w", err)
	}

	// Both factories share one Gemini construction; the embedding model is
	// process-wide so every tenant writes into the same vector space.
	newGemini := func(ctx context.Context, creds credential.Credentials) (*provider.Gemini, error) {
		return provider.NewGemini(ctx, creds, config.EmbeddingModel)
	}
	embedders := func(ctx context.Context, creds credential.Credentials) (provider.EmbeddingClient, error) {
		return newGemini(ctx, creds)
	}
	chats := func(ctx context.Context, creds credential.Credentials) (provider.ChatClient, error) {
		return newGemini(ctx, creds)
	}

	pipeline, err := ingest.NewPipeline(chunkStore, resolver, embedders, logger.With("component", "ingest"))
	if err != nil {
		return fmt.Errorf("creating ingestion pipeline: %w", err)
	}

	retriever, err := rag.NewRetriever(chunkStore, resolver, embedders, logger.With("component", "retriever"))
	if err != nil {
		return fmt.Errorf("creating retriever: %w", err)
	}
	synth, err := rag.NewSynthesizer(retriever, resolver, chats, logger.With("component", "synthesizer"))
	if err != nil {
		return fmt.Errorf("creating synthesizer: %w", err)
	}

	server := api.NewServer(
		api.NewHealthHandler(pool, logger.With("component", "api")),
		api.NewIngestHandler(pipeline, chunkStore, logger.With("component", "api")),
		api.NewChatHandler(synth, logger.With("component", "api")),
		api.NewBotConfigHandler(credStore, cfg.DefaultModel, logger.With("component", "api")),
		cfg.CORSOrigins,
		logger.With("component", "api"),
	)

	return server.Run(ctx, addr)
}
