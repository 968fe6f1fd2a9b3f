package store

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// SQLite wraps a database/sql handle on a SQLite catalog file.
type SQLite struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenSQLite opens the catalog file at path with foreign keys enforced.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLite, error) {
	logger = logger.With().Str("component", "store").Logger()
	logger.Info().Str("path", path).Msg("opening sqlite catalog")

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLite{db: db, logger: logger}, nil
}

// DB exposes the database handle for repositories.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// HealthCheck verifies the catalog file is reachable.
func (s *SQLite) HealthCheck(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.logger.Info().Msg("closing sqlite catalog")
	return s.db.Close()
}
