// env.go - Opens the configured database for a command

package cli

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"go-blog-backend/config"
	"go-blog-backend/database"
	"go-blog-backend/logger"
	"go-blog-backend/metrics"
)

type env struct {
	cfg      *config.Config
	db       *gorm.DB
	sessions *database.Sessions
}

// openEnv loads the same configuration the server uses. SQL logging goes
// to stderr at warn level so it does not mix with command output.
func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.NewWithOutput("warn", false, os.Stderr)
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	sessions := database.NewSessions(db, database.PoolSize(cfg), cfg.DBAcquireTimeout, metrics.New())
	return &env{cfg: cfg, db: db, sessions: sessions}, nil
}

func (e *env) Close() { _ = database.Close(e.db) }
