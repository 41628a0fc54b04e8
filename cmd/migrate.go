package cmd

import (
	"fmt"
	"os"

	"github.com/awaqi/supportbot/db"
)

// runMigrate applies all pending database migrations. Only DATABASE_URL is
// required here; the rest of the configuration is a serve-time concern.
func runMigrate() error {
	connURL := os.Getenv("DATABASE_URL")
	if connURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return db.Migrate(connURL)
}
