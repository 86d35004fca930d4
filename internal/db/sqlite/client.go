package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	wderrors "github.com/iamwavecut/warden/internal/errors"
	"github.com/iamwavecut/warden/resources"
)

const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type sqliteClient struct {
	db    *sqlx.DB
	mutex sync.RWMutex
}

func NewSQLiteClient(ctx context.Context, dir, name string) (*sqliteClient, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db dir: %w", wderrors.ErrStoreUnavailable, err)
	}
	dbx, err := sqlx.ConnectContext(ctx, "sqlite", filepath.Join(dir, name)+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", wderrors.ErrStoreUnavailable, err)
	}
	dbx.SetMaxOpenConns(42)

	migrationsSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: resources.FS,
		Root:       "migrations",
	}
	n, err := migrate.ExecContext(ctx, dbx.DB, "sqlite3", migrationsSource, migrate.Up)
	if err != nil {
		_ = dbx.Close()
		return nil, fmt.Errorf("%w: migrate up: %w", wderrors.ErrStoreUnavailable, err)
	}
	if n > 0 {
		log.WithField("object", "sqlite").Infof("applied %d migrations", n)
	}

	return newClient(dbx), nil
}

func newClient(dbx *sqlx.DB) *sqliteClient {
	return &sqliteClient{db: dbx}
}

func (c *sqliteClient) Close() error {
	return c.db.Close()
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", wderrors.ErrStoreUnavailable, op, err)
}

// ensureChat creates the chat row that every other table references.
func ensureChat(ctx context.Context, ext sqlx.ExecerContext, chatID int64) error {
	_, err := ext.ExecContext(ctx, `INSERT OR IGNORE INTO chats (id) VALUES (?)`, chatID)
	return err
}
