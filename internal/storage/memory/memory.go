// Package memory is an in-process storage backend. Watchers are fanned out
// the way an event bus does it. A watcher that falls behind loses individual
// events and receives EventInvalidated once it has room again.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	docs  map[storage.DocRef]storage.Document
	subs  map[chan storage.Event]bool // true once the watcher missed an event
	alive bool
}

var _ storage.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		docs:  make(map[storage.DocRef]storage.Document),
		subs:  make(map[chan storage.Event]bool),
		alive: true,
	}
}

func (s *Store) Init() error           { return nil }
func (s *Store) Load() error           { return nil }
func (s *Store) GetConfigPath() string { return "memory" }

// Close ends every watch. Reads and writes fail afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return nil
	}
	s.alive = false
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, ref storage.DocRef) (storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return storage.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return storage.Document{}, storage.ErrClosed
	}
	doc, ok := s.docs[ref]
	if !ok {
		return storage.Document{}, storage.ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *Store) Put(ctx context.Context, ref storage.DocRef, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return storage.ErrClosed
	}
	prev := s.docs[ref]
	s.docs[ref] = storage.Document{
		Ref:       ref,
		Data:      append([]byte(nil), data...),
		Revision:  prev.Revision + 1,
		UpdatedAt: time.Now(),
	}
	s.publish(storage.Event{Type: storage.EventDocumentChanged, Ref: ref})
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]storage.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return nil, storage.ErrClosed
	}
	var docs []storage.Document
	for ref, doc := range s.docs {
		if ref.Collection == collection {
			docs = append(docs, copyDoc(doc))
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref.ID < docs[j].Ref.ID })
	return docs, nil
}

// Watch subscribes until ctx is done or the store is closed.
func (s *Store) Watch(ctx context.Context) (<-chan storage.Event, error) {
	ch := make(chan storage.Event, constants.WatchBufferSize)
	s.mu.Lock()
	if !s.alive {
		s.mu.Unlock()
		return nil, storage.ErrClosed
	}
	s.subs[ch] = false
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}()

	return ch, nil
}

// publish must be called with s.mu held.
func (s *Store) publish(evt storage.Event) {
	for ch, missed := range s.subs {
		out := evt
		if missed {
			out = storage.Event{Type: storage.EventInvalidated}
		}
		select {
		case ch <- out:
			s.subs[ch] = false
		default:
			s.subs[ch] = true
		}
	}
}

func copyDoc(doc storage.Document) storage.Document {
	doc.Data = append([]byte(nil), doc.Data...)
	return doc
}
