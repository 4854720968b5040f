package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/migration"
	"github.com/julianstephens/seasonal/internal/storage"
	"github.com/julianstephens/seasonal/migrations"
)

type Store struct {
	path         string
	db           *sql.DB
	pollInterval time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

var _ storage.Backend = (*Store)(nil)

type Option func(*Store)

// WithPollInterval sets how often Watch looks for changed revisions.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:         path,
		pollInterval: constants.DefaultPollInterval,
		closed:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("%w, run 'seasonal init' first", storage.ErrNotInitialized)
	}

	if err := s.open(); err != nil {
		return err
	}

	return s.validateSchemaVersion()
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers; concurrent season saves would
	// otherwise race for the file lock.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to configure database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "store", "sqlite")
	})
	return err
}

func (s *Store) validateSchemaVersion() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

// SchemaVersion reports the applied and the latest known schema versions.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, storage.ErrNotInitialized
	}
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

func (s *Store) Get(ctx context.Context, ref storage.DocRef) (storage.Document, error) {
	if s.db == nil {
		return storage.Document{}, storage.ErrNotInitialized
	}

	var (
		data      string
		updatedAt string
		doc       = storage.Document{Ref: ref}
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT data, revision, updated_at FROM documents WHERE collection = ? AND id = ?",
		ref.Collection, ref.ID,
	).Scan(&data, &doc.Revision, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Document{}, storage.ErrNotFound
		}
		return storage.Document{}, err
	}

	doc.Data = []byte(data)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return doc, nil
}

func (s *Store) Put(ctx context.Context, ref storage.DocRef, data []byte) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, revision, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			revision = documents.revision + 1,
			updated_at = excluded.updated_at`,
		ref.Collection, ref.ID, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) List(ctx context.Context, collection string) ([]storage.Document, error) {
	if s.db == nil {
		return nil, storage.ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data, revision, updated_at FROM documents WHERE collection = ? ORDER BY id",
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var (
			id, data, updatedAt string
			revision            int64
		)
		if err := rows.Scan(&id, &data, &revision, &updatedAt); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, updatedAt)
		docs = append(docs, storage.Document{
			Ref:       storage.DocRef{Collection: collection, ID: id},
			Data:      []byte(data),
			Revision:  revision,
			UpdatedAt: ts,
		})
	}
	return docs, rows.Err()
}
