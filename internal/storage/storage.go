package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Client is client-local durable key/value storage, the same shape as a
// browser's localStorage. Multi-key writes are applied in one transaction.
type Client interface {
	Close()
	GetItem(key string) (string, bool, error)
	SetItems(items map[string]string) error
	RemoveItems(keys ...string) error
}

type client struct {
	db *sql.DB
}

// NewClient opens the storage file at path, creating it and its directory
// if needed, and applies pending migrations.
func NewClient(path string) (Client, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}

	m, err := NewMigrator(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("applying storage migrations: %w", err)
	}

	return &client{db: db}, nil
}

// Open opens the storage database without touching its schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening storage %s: %w", path, err)
	}

	// One writer at a time; SQLite serialises anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to storage %s: %w", path, err)
	}

	return db, nil
}

// NewMigrator returns a migrate instance over the embedded schema. Closing
// the returned instance closes db as well.
func NewMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading storage migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}

	return m, nil
}

func (c *client) GetItem(key string) (string, bool, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying storage item %q: %w", key, err)
	}

	return value, true, nil
}

func (c *client) SetItems(items map[string]string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("starting storage transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	for key, value := range items {
		if _, err := tx.Exec(query, key, value, now); err != nil {
			return fmt.Errorf("writing storage item %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing storage items: %w", err)
	}

	return nil
}

func (c *client) RemoveItems(keys ...string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("starting storage transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.Exec(`DELETE FROM local_storage WHERE key = ?`, key); err != nil {
			return fmt.Errorf("removing storage item %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing storage removal: %w", err)
	}

	return nil
}

func (c *client) Close() {
	err := c.db.Close()
	if err != nil {
		log.Errorf("closing storage: %v", err)
	}
}
