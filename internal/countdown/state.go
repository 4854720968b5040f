package countdown

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// LocalState is a per-machine key/value area. Values never leave the machine
// and are not part of the synced store.
type LocalState struct {
	d *diskv.Diskv
}

// OpenLocalState opens (creating if needed) the state directory dir.
func OpenLocalState(dir string) (*LocalState, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create local state dir: %w", err)
	}
	return &LocalState{d: diskv.New(diskv.Options{
		BasePath:     dir,
		TempDir:      strings.TrimRight(dir, string(os.PathSeparator)) + ".tmp",
		CacheSizeMax: 64 * 1024,
		FilePerm:     0600,
		PathPerm:     0700,
	})}, nil
}

// Get returns the value of key and whether it exists.
func (s *LocalState) Get(key string) (string, bool, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(val), true, nil
}

func (s *LocalState) Set(key, value string) error {
	if err := s.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *LocalState) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}
