// Package cmd provides the CLI entry points for the supportbot backend.
//
// Commands:
//   - serve: HTTP API server (ingestion, chat, tenant config)
//   - migrate: apply database migrations
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/awaqi/supportbot/internal/log"
)

// Execute is the main entry point for the supportbot binary.
func Execute() error {
	// Initialize logger once at entry point.
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe(logger)
	case "migrate":
		return runMigrate()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("supportbot - multi-tenant RAG support chatbot backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  supportbot serve [addr]  Start the HTTP API server (default: 127.0.0.1:8000)")
	fmt.Println("  supportbot migrate       Apply database migrations")
	fmt.Println("  supportbot --version     Show version information")
	fmt.Println("  supportbot --help        Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_URL               Required: PostgreSQL connection URL")
	fmt.Println("  SUPPORTBOT_ENCRYPTION_KEY  Required: 64-char hex key for stored API keys")
	fmt.Println("  GEMINI_API_KEY             Optional: fallback Gemini API key (GOOGLE_API_KEY also recognized)")
	fmt.Println("  SUPPORTBOT_DEFAULT_MODEL   Optional: default chat model")
	fmt.Println("  DEBUG                      Optional: enable debug logging")
}
