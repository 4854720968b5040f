// Package clitest builds command contexts for tests.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/config"
	"github.com/julianstephens/seasonal/internal/storage"
	"github.com/julianstephens/seasonal/internal/storage/memory"
)

// New returns a Context over an initialized in-memory store. Output is
// captured and available through Output.
func New(t testing.TB) *cli.Context {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Store = cli.StoreMemory

	store := storage.NewDocumentStore(memory.New())
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &cli.Context{
		Config:     cfg,
		ConfigPath: filepath.Join(dir, "config.yaml"),
		ConfigDir:  dir,
		Store:      store,
		Out:        &bytes.Buffer{},
	}
}

// Output returns what ctx has printed so far.
func Output(ctx *cli.Context) string {
	if buf, ok := ctx.Out.(*bytes.Buffer); ok {
		return buf.String()
	}
	return ""
}

// Reset discards captured output.
func Reset(ctx *cli.Context) {
	if buf, ok := ctx.Out.(*bytes.Buffer); ok {
		buf.Reset()
	}
}
