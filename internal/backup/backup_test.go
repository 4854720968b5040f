package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/storage"
	"github.com/julianstephens/seasonal/internal/storage/memory"
)

func setupTestStore(t *testing.T) *storage.DocumentStore {
	t.Helper()
	store := storage.NewDocumentStore(memory.New())
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	season := models.SeasonDocument{
		SeasonNumber: 1,
		Entries: []models.ScheduleEntry{
			{ID: "C1-day1", ChannelID: "C1", Date: "1", Completed: true},
			{ID: "C1-day2", ChannelID: "C1", Date: "2"},
		},
	}
	if err := store.SaveSeason(ctx, season); err != nil {
		t.Fatalf("SaveSeason() error: %v", err)
	}
	if err := store.SaveNavigation(ctx, models.NavigationPrefs{CurrentDay: 12, CurrentPage: 2}); err != nil {
		t.Fatalf("SaveNavigation() error: %v", err)
	}
	if err := store.SaveSettings(ctx, models.UserSettings{ChannelSuffixes: map[int]string{0: "Boom Bap"}}); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}
	return store
}

func TestCreateBackup(t *testing.T) {
	store := setupTestStore(t)
	mgr := NewManager(store, "memory", t.TempDir())

	path, err := mgr.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("backup file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("backup mode = %v, want 0600", info.Mode().Perm())
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot() error: %v", err)
	}
	if snap.Version != SnapshotVersion || snap.Source != "memory" {
		t.Errorf("header = version %d source %q", snap.Version, snap.Source)
	}
	if len(snap.Documents) != 3 {
		t.Errorf("len(Documents) = %d, want 3", len(snap.Documents))
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	store := setupTestStore(t)
	mgr := NewManager(store, "memory", t.TempDir())
	fixed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup(context.Background())
		if err != nil {
			t.Fatalf("CreateBackup() error: %v", err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error: %v", err)
	}
	if len(backups) != 4 {
		t.Fatalf("len(ListBackups()) = %d, want 4", len(backups))
	}
	for _, b := range backups {
		if b.Timestamp.Year() != 2026 || b.Timestamp.Hour() != 4 {
			t.Errorf("parsed timestamp %v from %s", b.Timestamp, filepath.Base(b.Path))
		}
	}
}

func TestBackupRotation(t *testing.T) {
	store := setupTestStore(t)
	mgr := NewManager(store, "memory", t.TempDir())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	total := constants.MaxBackups + 4
	for i := 0; i < total; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		mgr.now = func() time.Time { return at }
		if _, err := mgr.CreateBackup(context.Background()); err != nil {
			t.Fatalf("CreateBackup() error: %v", err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("kept %d backups, want %d", len(backups), constants.MaxBackups)
	}
	newest := base.Add(time.Duration(total-1) * time.Hour)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("newest = %v, want %v", backups[0].Timestamp, newest)
	}
	oldestKept := base.Add(time.Duration(total-constants.MaxBackups) * time.Hour)
	if !backups[len(backups)-1].Timestamp.Equal(oldestKept) {
		t.Errorf("oldest = %v, want %v", backups[len(backups)-1].Timestamp, oldestKept)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(setupTestStore(t), "memory", dir)

	for _, name := range []string{"notes.txt", constants.BackupFilePrefix + "garbage" + constants.BackupFileSuffix} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("ListBackups() = %v, want none", backups)
	}

	missing := NewManager(setupTestStore(t), "memory", filepath.Join(dir, "absent"))
	if got, err := missing.ListBackups(); err != nil || len(got) != 0 {
		t.Errorf("ListBackups() on missing dir = %v, %v", got, err)
	}
}

func TestRestoreBackup(t *testing.T) {
	store := setupTestStore(t)
	dir := t.TempDir()
	mgr := NewManager(store, "memory", dir)
	ctx := context.Background()

	mgr.now = func() time.Time { return time.Date(2026, 1, 1, 8, 0, 0, 0, time.Local) }
	path, err := mgr.CreateBackup(ctx)
	if err != nil {
		t.Fatalf("CreateBackup() error: %v", err)
	}

	if err := store.SaveNavigation(ctx, models.NavigationPrefs{CurrentDay: 300, CurrentPage: 1}); err != nil {
		t.Fatalf("SaveNavigation() error: %v", err)
	}

	mgr.now = func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local) }
	if err := mgr.RestoreBackup(ctx, path); err != nil {
		t.Fatalf("RestoreBackup() error: %v", err)
	}

	prefs, err := store.GetNavigation(ctx)
	if err != nil {
		t.Fatalf("GetNavigation() error: %v", err)
	}
	if prefs.CurrentDay != 12 || prefs.CurrentPage != 2 {
		t.Errorf("restored position = %d/%d, want 12/2", prefs.CurrentDay, prefs.CurrentPage)
	}
	doc, err := store.GetSeason(ctx, 1)
	if err != nil {
		t.Fatalf("GetSeason() error: %v", err)
	}
	if len(doc.Entries) != 2 || !doc.Entries[0].Completed {
		t.Errorf("restored season 1 = %+v", doc.Entries)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() error: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("len(ListBackups()) = %d, want 2 including the pre-restore backup", len(backups))
	}
}

func TestRestoreRejectsInvalidSnapshot(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(setupTestStore(t), "memory", dir)

	tests := map[string]string{
		"not json":    "this is not a backup",
		"bad version": `{"version": 99, "documents": []}`,
		"bad doc":     `{"version": 1, "documents": [{"collection": "", "id": "x", "data": {}}]}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("%s.json", name))
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			err := mgr.RestoreBackup(context.Background(), path)
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("RestoreBackup() error = %v, want ErrInvalidSnapshot", err)
			}
		})
	}

	if backups, _ := mgr.ListBackups(); len(backups) != 0 {
		t.Errorf("invalid restore created %d backups", len(backups))
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(setupTestStore(t), "memory", dir)

	path, err := mgr.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup() error: %v", err)
	}
	got, err := mgr.Resolve(filepath.Base(path))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != path {
		t.Errorf("Resolve() = %s, want %s", got, path)
	}
	if _, err := mgr.Resolve("seasonal-19990101-0000.json"); err == nil {
		t.Error("Resolve() of a missing backup succeeded")
	}
}
