// Package filestore keeps documents as JSON files under a directory, one
// subdirectory per collection, and watches the tree with fsnotify so edits
// from other processes reach listeners.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/seasonal/internal/storage"
)

const fileExt = ".json"

type Store struct {
	basePath string
	d        *diskv.Diskv
	mu       sync.Mutex // serializes read-modify-write of revisions
}

var _ storage.Backend = (*Store)(nil)

// envelope is the on-disk form of a document.
type envelope struct {
	Revision  int64           `json:"revision"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Data      json.RawMessage `json:"data"`
}

func New(basePath string) *Store {
	return &Store{
		basePath: filepath.Clean(basePath),
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           filepath.Clean(basePath) + ".tmp",
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// No cache: other processes write the same files.
			CacheSizeMax: 0,
		}),
	}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := os.MkdirAll(s.basePath+".tmp", 0700); err != nil {
		return fmt.Errorf("failed to create store temp directory: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	info, err := os.Stat(s.basePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w, run 'seasonal init' first", storage.ErrNotInitialized)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("store path %s is not a directory", s.basePath)
	}
	return nil
}

func (s *Store) Close() error          { return nil }
func (s *Store) GetConfigPath() string { return s.basePath }

func (s *Store) Get(ctx context.Context, ref storage.DocRef) (storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return storage.Document{}, err
	}
	env, err := s.read(toKey(ref))
	if err != nil {
		return storage.Document{}, err
	}
	return storage.Document{Ref: ref, Data: env.Data, Revision: env.Revision, UpdatedAt: env.UpdatedAt}, nil
}

func (s *Store) Put(ctx context.Context, ref storage.DocRef, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("document %s is not valid JSON", ref)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := toKey(ref)
	var revision int64
	prev, err := s.read(key)
	switch {
	case err == nil:
		revision = prev.Revision
	case errors.Is(err, storage.ErrNotFound):
	default:
		return err
	}

	b, err := json.Marshal(envelope{
		Revision:  revision + 1,
		UpdatedAt: time.Now().UTC(),
		Data:      json.RawMessage(data),
	})
	if err != nil {
		return err
	}
	return s.d.Write(key, b)
}

func (s *Store) List(ctx context.Context, collection string) ([]storage.Document, error) {
	var docs []storage.Document
	for key := range s.d.KeysPrefix(collection+"/", ctx.Done()) {
		ref, err := storage.ParseDocRef(key)
		if err != nil || ref.Collection != collection {
			continue
		}
		env, err := s.read(key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		docs = append(docs, storage.Document{Ref: ref, Data: env.Data, Revision: env.Revision, UpdatedAt: env.UpdatedAt})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref.ID < docs[j].Ref.ID })
	return docs, nil
}

func (s *Store) read(key string) (envelope, error) {
	raw, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return envelope{}, storage.ErrNotFound
		}
		return envelope{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return env, nil
}

func toKey(ref storage.DocRef) string {
	return ref.String()
}

// keyToPathTransform maps "collection/id" to <base>/collection/id.json.
func keyToPathTransform(key string) *diskv.PathKey {
	collection, id, _ := strings.Cut(key, "/")
	return &diskv.PathKey{
		Path:     []string{collection},
		FileName: id + fileExt,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(pathKey.Path, "/") + "/" + strings.TrimSuffix(pathKey.FileName, fileExt)
}

// refForPath derives the document a file event belongs to.
func (s *Store) refForPath(path string) (storage.DocRef, bool) {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." {
		return storage.DocRef{}, false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 2 || !strings.HasSuffix(parts[1], fileExt) {
		return storage.DocRef{}, false
	}
	return storage.DocRef{Collection: parts[0], ID: strings.TrimSuffix(parts[1], fileExt)}, true
}
