/*
Package storage implements the persistent storage layer for search history.

This package provides SQLite-based storage for the key-value slot that holds
the recent-search list, and an analytics log of executed searches. Analytics
writes degrade gracefully if the database is unavailable; key-value writes
report ErrUnavailable so callers can surface the failure.

The database is stored at ~/.gh-repo-search/history.db by default and uses
modernc.org/sqlite (a pure Go, CGo-free implementation).
*/
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	_ "modernc.org/sqlite"
)

// ErrUnavailable is returned by key-value operations when the database
// could not be opened.
var ErrUnavailable = errors.New("storage unavailable")

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// RecordSearch records an executed search for analytics.
	RecordSearch(ctx context.Context, search SearchRecord) error

	// CountSearches returns how many searches were recorded since a given time.
	CountSearches(ctx context.Context, since time.Time) (int, error)

	// Cleanup removes old analytics records based on retention policy.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

var _ Storage = (*SQLiteStorage)(nil)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   *log.Logger
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a new SQLite storage instance at dbPath.
//
// The parent directory is created on Init. If the database cannot be
// opened, the storage is disabled: analytics become no-ops and key-value
// operations return ErrUnavailable.
func NewStorage(dbPath string, logger *log.Logger) *SQLiteStorage {
	if logger == nil {
		logger = log.Default()
	}
	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: dbPath != "",
		logger:  logger.WithPrefix("storage"),
	}
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled (graceful degradation) and
// the error is returned for the caller to log.
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			return
		}
		// one writer; the store and the analytics log share it
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.disable()
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.disable()
			return
		}
	})

	if initErr != nil {
		s.logger.Warn("database disabled", "path", s.dbPath, "err", initErr)
	}
	return initErr
}

// Enabled reports whether the database is open and usable.
func (s *SQLiteStorage) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// ready must be called with s.mu held or before the storage is shared.
func (s *SQLiteStorage) ready() bool {
	return s.enabled && s.db != nil
}

func (s *SQLiteStorage) disable() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	s.enabled = false
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}
