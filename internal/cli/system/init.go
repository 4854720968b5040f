package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/storage"
	"github.com/julianstephens/seasonal/internal/storage/filestore"
	"github.com/julianstephens/seasonal/internal/storage/sqlite"
	"github.com/julianstephens/seasonal/internal/syncer"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database or document directory before initialization."`
	Source string `help:"Store location to copy every document from (SQLite path, Postgres URL, file:<dir>)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized seasonal storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		n, err := c.copyFrom(bg, ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("  Copied %d documents\n", n)
	}

	sched := syncer.NewScheduleSession(ctx.Store)
	defer sched.Close()
	if err := sched.Load(bg); err != nil {
		return err
	}
	seeded, err := sched.SeedIfEmpty(bg)
	if err != nil {
		return err
	}
	if seeded {
		ctx.Printf("Seeded schedule grid: %d entries\n", len(sched.Entries()))
	} else {
		ctx.Printf("Schedule grid already present: %d entries\n", len(sched.Entries()))
	}
	return nil
}

// reset removes the on-disk data of file-backed stores.
func (c *InitCmd) reset(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if c.Source != "" {
		// Don't delete if it's the source (user error protection)
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == path {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}

	var remove func(string) error
	switch ctx.Store.Backend().(type) {
	case *sqlite.Store:
		remove = os.Remove
	case *filestore.Store:
		remove = os.RemoveAll
	default:
		return errors.New("--force is only supported for SQLite and file stores")
	}

	if _, err := os.Stat(path); err == nil {
		// Close first to prevent file locking issues
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing store: %w", err)
		}
		if err := remove(path); err != nil {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
		ctx.Printf("Deleted existing store at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx context.Context, app *cli.Context) (int, error) {
	backend, err := cli.NewBackend(c.Source, app.Config.PollInterval)
	if err != nil {
		return 0, err
	}
	source := storage.NewDocumentStore(backend)
	if err := source.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source store: %w", err)
	}
	defer source.Close()

	docs, err := source.Export(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read source store: %w", err)
	}
	if err := app.Store.Import(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to write destination store: %w", err)
	}
	return len(docs), nil
}
