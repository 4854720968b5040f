package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/storage"
)

func TestGetMissing(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), storage.SeasonRef(1)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestPutBumpsRevision(t *testing.T) {
	s := New()
	ctx := context.Background()
	ref := storage.SeasonRef(2)

	for i := 0; i < 3; i++ {
		if err := s.Put(ctx, ref, []byte(`{"seasonNumber":2}`)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	doc, err := s.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if doc.Revision != 3 {
		t.Errorf("Revision = %d, want 3", doc.Revision)
	}
	if string(doc.Data) != `{"seasonNumber":2}` {
		t.Errorf("Data = %s", doc.Data)
	}
}

func TestListOrdersByID(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, n := range []int{3, 1, 2} {
		if err := s.Put(ctx, storage.SeasonRef(n), []byte(`{}`)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}
	if err := s.Put(ctx, storage.SettingsRef(), []byte(`{}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	docs, err := s.List(ctx, "schedules")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(docs))
	}
	want := []string{"season-1", "season-2", "season-3"}
	for i, doc := range docs {
		if doc.Ref.ID != want[i] {
			t.Errorf("docs[%d].Ref.ID = %q, want %q", i, doc.Ref.ID, want[i])
		}
	}
}

func TestWatchReceivesWrites(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	ref := storage.NavigationRef()
	if err := s.Put(context.Background(), ref, []byte(`{}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	select {
	case evt := <-ch:
		if evt.Type != storage.EventDocumentChanged || evt.Ref != ref {
			t.Errorf("event = %+v, want change of %s", evt, ref)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			// a buffered event may still be drained first
			if _, ok := <-ch; ok {
				t.Error("watch channel not closed after cancel")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}

func TestSlowWatcherIsInvalidatedAfterDrop(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	ref := storage.NavigationRef()
	// One write more than the buffer holds.
	for i := 0; i <= constants.WatchBufferSize; i++ {
		if err := s.Put(context.Background(), ref, []byte(`{}`)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}
	for i := 0; i < constants.WatchBufferSize; i++ {
		<-ch
	}

	if err := s.Put(context.Background(), storage.SettingsRef(), []byte(`{}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if evt := <-ch; evt.Type != storage.EventInvalidated {
		t.Fatalf("event after drop = %+v, want invalidation", evt)
	}

	if err := s.Put(context.Background(), ref, []byte(`{}`)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if evt := <-ch; evt.Type != storage.EventDocumentChanged || evt.Ref != ref {
		t.Errorf("event = %+v, want change of %s", evt, ref)
	}
}

func TestClosedStore(t *testing.T) {
	s := New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := s.Put(context.Background(), storage.SeasonRef(1), []byte(`{}`)); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Put() after Close error = %v, want ErrClosed", err)
	}
	if _, err := s.Watch(context.Background()); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Watch() after Close error = %v, want ErrClosed", err)
	}
}
