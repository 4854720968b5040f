package backup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/storage"
	"github.com/julianstephens/seasonal/internal/storage/filestore"
	"github.com/julianstephens/seasonal/internal/storage/sqlite"
)

// TestIntegrationBackupAcrossBackends snapshots a SQLite store and restores
// it into a file store.
func TestIntegrationBackupAcrossBackends(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()

	src := storage.NewDocumentStore(sqlite.NewStore(filepath.Join(tempDir, "seasonal.db")))
	if err := src.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer src.Close()

	entries := schedule.GenerateSeason(4)
	entries[0].Completed = true
	if err := src.SaveSeason(ctx, models.SeasonDocument{SeasonNumber: 4, Entries: entries}); err != nil {
		t.Fatalf("SaveSeason() error: %v", err)
	}
	if err := src.SaveSettings(ctx, models.UserSettings{ChannelSuffixes: map[int]string{300: "Drill"}}); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}

	backupDir := filepath.Join(tempDir, "backups")
	path, err := NewManager(src, "sqlite", backupDir).CreateBackup(ctx)
	if err != nil {
		t.Fatalf("CreateBackup() error: %v", err)
	}

	dst := storage.NewDocumentStore(filestore.New(filepath.Join(tempDir, "docs")))
	if err := dst.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer dst.Close()

	if err := NewManager(dst, "file", backupDir).RestoreBackup(ctx, path); err != nil {
		t.Fatalf("RestoreBackup() error: %v", err)
	}

	doc, err := dst.GetSeason(ctx, 4)
	if err != nil {
		t.Fatalf("GetSeason() error: %v", err)
	}
	if len(doc.Entries) != len(entries) {
		t.Fatalf("restored %d entries, want %d", len(doc.Entries), len(entries))
	}
	if !doc.Entries[0].Completed {
		t.Error("completion lost in restore")
	}
	settings, err := dst.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings() error: %v", err)
	}
	if settings.ChannelSuffixes[300] != "Drill" {
		t.Errorf("restored suffix = %q, want Drill", settings.ChannelSuffixes[300])
	}
}
