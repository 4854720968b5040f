package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/julianstephens/seasonal/internal/backup"
	"github.com/julianstephens/seasonal/internal/config"
	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/countdown"
	"github.com/julianstephens/seasonal/internal/keyring"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/notifier"
	"github.com/julianstephens/seasonal/internal/storage"
	"github.com/julianstephens/seasonal/internal/storage/filestore"
	"github.com/julianstephens/seasonal/internal/storage/memory"
	"github.com/julianstephens/seasonal/internal/storage/postgres"
	"github.com/julianstephens/seasonal/internal/storage/sqlite"
	"github.com/julianstephens/seasonal/internal/syncer"
)

// Store location keywords accepted by --store and config.yaml.
const (
	StoreMemory  = "memory"
	StoreKeyring = "keyring"
	filePrefix   = "file:"
)

type Context struct {
	Config     *config.Config
	ConfigPath string
	ConfigDir  string
	Store      *storage.DocumentStore
	// Out receives command output. Defaults to color.Output.
	Out io.Writer
}

// NewContext resolves the configured store location into a document store.
// The store is not opened.
func NewContext(cfg *config.Config, configPath string) (*Context, error) {
	backend, err := NewBackend(cfg.Store, cfg.PollInterval)
	if err != nil {
		return nil, err
	}
	return &Context{
		Config:     cfg,
		ConfigPath: configPath,
		ConfigDir:  filepath.Dir(configPath),
		Store:      storage.NewDocumentStore(backend),
		Out:        color.Output,
	}, nil
}

// IsPostgres reports whether location is a Postgres URL or key=value DSN.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") ||
		strings.HasPrefix(location, "postgresql://") ||
		strings.Contains(location, "host=")
}

// NewBackend picks a backend from a store location: "memory", "keyring",
// a Postgres connection string, "file:<dir>" or a SQLite file path.
func NewBackend(location string, pollInterval time.Duration) (storage.Backend, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, errors.New("store location is empty")
	case location == StoreMemory:
		return memory.New(), nil
	case location == StoreKeyring:
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, errors.New("no connection string found in keyring. Use 'seasonal keyring set' to store one")
			}
			return nil, err
		}
		// Keyring entries may carry a password, so only the format is checked.
		if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, storage.ErrEmbeddedCredentials) {
			return nil, err
		}
		return postgres.New(connStr), nil
	case IsPostgres(location):
		if _, err := postgres.ValidateConnString(location); err != nil {
			return nil, err
		}
		return postgres.New(location), nil
	case strings.HasPrefix(location, filePrefix):
		dir, err := config.ExpandPath(strings.TrimPrefix(location, filePrefix))
		if err != nil {
			return nil, err
		}
		return filestore.New(dir), nil
	default:
		path, err := config.ExpandPath(location)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path, sqlite.WithPollInterval(pollInterval)), nil
	}
}

// StoreKind names the backend for backups and diagnostics.
func StoreKind(b storage.Backend) string {
	switch b.(type) {
	case *memory.Store:
		return "memory"
	case *postgres.Store:
		return "postgres"
	case *filestore.Store:
		return "file"
	case *sqlite.Store:
		return "sqlite"
	}
	return "unknown"
}

// Printf writes formatted output to c.Out.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.output(), format, args...)
}

// Println writes a line to c.Out.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.output(), args...)
}

func (c *Context) output() io.Writer {
	if c.Out == nil {
		return color.Output
	}
	return c.Out
}

// WorkspaceOptions are the sync options derived from the config.
func (c *Context) WorkspaceOptions(watch bool) syncer.Options {
	return syncer.Options{
		DebounceWindow:  c.Config.DebounceWindow,
		ChannelsPerPage: c.Config.ChannelsPerPage,
		Seed:            true,
		Watch:           watch,
	}
}

// OpenWorkspace loads the store into a workspace, seeding the grid when the
// store is empty. Callers must Close the workspace to flush pending writes.
func (c *Context) OpenWorkspace(ctx context.Context, watch bool) (*syncer.Workspace, error) {
	return syncer.OpenWorkspace(ctx, c.Store, c.WorkspaceOptions(watch))
}

// WithWorkspace opens a workspace without watching, runs fn and closes the
// workspace, flushing pending writes.
func (c *Context) WithWorkspace(ctx context.Context, fn func(*syncer.Workspace) error) error {
	ws, err := c.OpenWorkspace(ctx, false)
	if err != nil {
		return err
	}
	err = fn(ws)
	if closeErr := ws.Close(ctx); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to save changes: %w", closeErr))
	}
	return err
}

func (c *Context) BackupManager() *backup.Manager {
	return backup.NewManager(c.Store, StoreKind(c.Store.Backend()), backup.DefaultDir(c.ConfigDir))
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	if _, ok := c.Store.Backend().(*memory.Store); ok {
		return
	}
	if _, err := c.BackupManager().CreateBackup(ctx); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// CountdownTracker opens the per-machine countdown state under the config
// directory.
func (c *Context) CountdownTracker() (*countdown.Tracker, error) {
	state, err := countdown.OpenLocalState(filepath.Join(c.ConfigDir, constants.CountdownStateDirName))
	if err != nil {
		return nil, err
	}
	var opts []countdown.Option
	if c.Config.Notify {
		opts = append(opts, countdown.WithNotifier(notifier.New()))
	}
	return countdown.NewTracker(state, c.Config.Countdowns, opts...), nil
}
