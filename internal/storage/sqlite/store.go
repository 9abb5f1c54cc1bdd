package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/migration"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/migrations"
)

// dsnOptions enables foreign keys, waits on locks instead of failing fast,
// and opens every transaction with BEGIN IMMEDIATE so writers serialize.
const dsnOptions = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Dialect implements storage.Dialect for SQLite
type Dialect struct{}

func (Dialect) Rebind(query string) string { return query }

// LockClause is empty: the immediate transaction already holds the write lock
func (Dialect) LockClause() string { return "" }

func (Dialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path+dsnOptions)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	runner, err := s.MigrationRunner()
	if err != nil {
		return err
	}
	count, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if count > 0 {
		logger.Info("Applied migrations", "count", count, "path", s.path)
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'habitd init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.MigrationRunner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) WithTx(ctx context.Context, fn func(storage.Repository) error) error {
	return storage.RunInTx(ctx, s.db, Dialect{}, fn)
}

// MigrationRunner returns a runner over the embedded SQLite migrations
func (s *Store) MigrationRunner() (*migration.Runner, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite), nil
}

func (s *Store) Driver() migration.Driver {
	return migration.DriverSQLite
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
