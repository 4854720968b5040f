package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/storage"
)

// SnapshotVersion is the format version written into every backup.
const SnapshotVersion = 1

var ErrInvalidSnapshot = errors.New("invalid backup snapshot")

// Store is the part of the document store a backup needs.
type Store interface {
	Export(ctx context.Context) ([]storage.Document, error)
	Import(ctx context.Context, docs []storage.Document) error
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Snapshot is the on-disk backup format: every document of every collection.
type Snapshot struct {
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"createdAt"`
	Source    string           `json:"source"`
	Documents []SnapshotRecord `json:"documents"`
}

type SnapshotRecord struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Manager creates, lists, rotates and restores JSON snapshots of a store.
type Manager struct {
	store     Store
	source    string
	backupDir string
	now       func() time.Time
}

// NewManager keeps backups in backupDir. source names the store in the
// snapshot header and is informational only.
func NewManager(store Store, source, backupDir string) *Manager {
	return &Manager{
		store:     store,
		source:    source,
		backupDir: backupDir,
		now:       time.Now,
	}
}

// DefaultDir is the backup directory under a config directory.
func DefaultDir(configDir string) string {
	return filepath.Join(configDir, constants.BackupDirName)
}

func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes a snapshot of the store and rotates old backups.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	return m.createBackup(ctx, false)
}

// createBackup skips rotation when called on behalf of a restore, so the
// pre-restore snapshot never pushes out the backup being restored.
func (m *Manager) createBackup(ctx context.Context, skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	docs, err := m.store.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export store: %w", err)
	}

	now := m.now()
	snap := Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: now.UTC(),
		Source:    m.source,
		Documents: make([]SnapshotRecord, 0, len(docs)),
	}
	for _, doc := range docs {
		snap.Documents = append(snap.Documents, SnapshotRecord{
			Collection: doc.Ref.Collection,
			ID:         doc.Ref.ID,
			Data:       json.RawMessage(doc.Data),
			UpdatedAt:  doc.UpdatedAt,
		})
	}

	path, err := m.uniquePath(now)
	if err != nil {
		return "", err
	}
	if err := writeSnapshot(path, snap); err != nil {
		return "", err
	}
	logger.Info("Created backup", "path", path, "documents", len(snap.Documents))

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return path, nil
}

// uniquePath picks a minute-precision name, falling back to seconds and then
// a counter when a backup with that name already exists.
func (m *Manager) uniquePath(now time.Time) (string, error) {
	name := func(stamp string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}

	path := name(now.Format("20060102-1504"))
	if !exists(path) {
		return path, nil
	}
	stamp := now.Format("20060102-150405")
	path = name(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", errors.New("failed to generate unique backup filename")
		}
		path = name(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return path, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// ListBackups returns every backup, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
			continue
		}
		timestamp, ok := parseTimestamp(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseTimestamp reads YYYYMMDD-HHMM or YYYYMMDD-HHMMSS from a backup file
// name, ignoring a trailing -N counter.
func parseTimestamp(name string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	parts := strings.Split(stamp, "-")
	if len(parts) == 3 {
		stamp = parts[0] + "-" + parts[1]
	}
	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if ts, err := time.ParseInLocation(layout, stamp, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}
	return nil
}

// ReadSnapshot loads and validates a backup file.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read backup: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Version < 1 || snap.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
	}
	for _, rec := range snap.Documents {
		if rec.Collection == "" || rec.ID == "" || !json.Valid(rec.Data) {
			return Snapshot{}, fmt.Errorf("%w: bad document %s/%s", ErrInvalidSnapshot, rec.Collection, rec.ID)
		}
	}
	return snap, nil
}

// RestoreBackup validates the snapshot at path, backs up the current store
// and writes every snapshot document back. Documents absent from the
// snapshot are left untouched.
func (m *Manager) RestoreBackup(ctx context.Context, path string) error {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return err
	}

	current, err := m.createBackup(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to back up current store before restore: %w", err)
	}
	logger.Info("Backed up current store before restore", "path", current)

	docs := make([]storage.Document, 0, len(snap.Documents))
	for _, rec := range snap.Documents {
		docs = append(docs, storage.Document{
			Ref:       storage.DocRef{Collection: rec.Collection, ID: rec.ID},
			Data:      []byte(rec.Data),
			UpdatedAt: rec.UpdatedAt,
		})
	}
	if err := m.store.Import(ctx, docs); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	logger.Info("Restored backup", "path", path, "documents", len(docs))
	return nil
}

// Resolve finds a backup by absolute path, path relative to the working
// directory or bare file name inside the backup directory.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if !exists(name) {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if exists(name) {
		return filepath.Abs(name)
	}
	candidate := filepath.Join(m.backupDir, name)
	if exists(candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", m.backupDir)
}
