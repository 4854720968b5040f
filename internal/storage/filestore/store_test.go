package filestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/seasonal/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "docs"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	return s
}

func TestLoadUninitialized(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))
	if err := s.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestPutGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ref := storage.SettingsRef()

	if _, err := s.Get(ctx, ref); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, ref, []byte(`{"channelSuffixes":{"0":"Boom Bap"}}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := s.Put(ctx, ref, []byte(`{"channelSuffixes":{}}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	doc, err := s.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if doc.Revision != 2 {
		t.Errorf("Revision = %d, want 2", doc.Revision)
	}
	if string(doc.Data) != `{"channelSuffixes":{}}` {
		t.Errorf("Data = %s", doc.Data)
	}
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Put(context.Background(), storage.SeasonRef(1), []byte("{")); err == nil {
		t.Fatal("Put() succeeded, want error")
	}
}

func TestList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	docs, err := s.List(ctx, "schedules")
	if err != nil {
		t.Fatalf("List() on empty store error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("List() on empty store = %d docs", len(docs))
	}

	for _, n := range []int{10, 2, 1} {
		if err := s.Put(ctx, storage.SeasonRef(n), []byte(`{}`)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}
	if err := s.Put(ctx, storage.NavigationRef(), []byte(`{}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	docs, err = s.List(ctx, "schedules")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	want := []string{"season-1", "season-10", "season-2"}
	if len(docs) != len(want) {
		t.Fatalf("len(List()) = %d, want %d", len(docs), len(want))
	}
	for i, doc := range docs {
		if doc.Ref.ID != want[i] || doc.Ref.Collection != "schedules" {
			t.Errorf("docs[%d].Ref = %s, want schedules/%s", i, doc.Ref, want[i])
		}
	}
}

func TestRefForPath(t *testing.T) {
	s := New("/tmp/base")
	tests := []struct {
		path   string
		want   storage.DocRef
		wantOK bool
	}{
		{"/tmp/base/schedules/season-3.json", storage.SeasonRef(3), true},
		{"/tmp/base/userSettings/default-user.json", storage.SettingsRef(), true},
		{"/tmp/base/schedules", storage.DocRef{}, false},
		{"/tmp/base/schedules/notes.txt", storage.DocRef{}, false},
		{"/tmp/base", storage.DocRef{}, false},
	}
	for _, tt := range tests {
		got, ok := s.refForPath(tt.path)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("refForPath(%q) = (%v, %v), want (%v, %v)", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestWatchEmitsDocumentChanges(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The collection directory exists before watching starts.
	if err := s.Put(context.Background(), storage.SeasonRef(1), []byte(`{}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := s.Put(context.Background(), storage.SeasonRef(1), []byte(`{"seasonNumber":1}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == storage.EventInvalidated {
				return
			}
			if evt.Ref != storage.SeasonRef(1) {
				t.Fatalf("event ref = %s, want %s", evt.Ref, storage.SeasonRef(1))
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for document change event")
		}
	}
}
