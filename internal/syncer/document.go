package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/seasonal/internal/storage"
)

// DocumentSpec wires a Document to one stored value.
type DocumentSpec[T any] struct {
	Name    string
	Ref     storage.DocRef
	Load    func(ctx context.Context) (T, error)
	Save    func(ctx context.Context, v T) error
	Default func() T
	// Clone copies values crossing the lock; nil means plain assignment.
	Clone func(T) T
}

// Document keeps a local copy of a single stored value. Local updates apply
// at once and are persisted after the debounce window; only the last value
// of a burst is written. Remote changes are ignored while a local change is
// pending or being saved, so the store never overwrites newer local state.
// Concurrent writers resolve as last-writer-wins.
type Document[T any] struct {
	spec DocumentSpec[T]
	log  *log.Logger

	mu        sync.Mutex
	value     T
	pending   bool // a local change waits for the debouncer
	saving    int  // saves in flight
	loaded    bool
	lastErr   error
	observers []func()

	debouncer *Debouncer
}

func NewDocument[T any](spec DocumentSpec[T], window time.Duration, logger *log.Logger) *Document[T] {
	d := &Document[T]{
		spec: spec,
		log:  logger,
	}
	if spec.Default != nil {
		d.value = spec.Default()
	}
	d.debouncer = NewDebouncer(window, d.saveDebounced)
	return d
}

func (d *Document[T]) clone(v T) T {
	if d.spec.Clone == nil {
		return v
	}
	return d.spec.Clone(v)
}

// Load reads the stored value. A missing document leaves the default in
// place. Other failures are recorded and returned; nothing is retried.
func (d *Document[T]) Load(ctx context.Context) error {
	v, err := d.spec.Load(ctx)
	d.mu.Lock()
	switch {
	case err == nil:
		d.value = v
		d.loaded = true
	case errors.Is(err, storage.ErrNotFound):
		d.loaded = true
		err = nil
	default:
		d.lastErr = err
	}
	d.mu.Unlock()

	if err != nil {
		d.log.Error("Failed to load document", "document", d.spec.Name, "error", err)
		return fmt.Errorf("failed to load %s: %w", d.spec.Name, err)
	}
	d.notify()
	return nil
}

// Get returns a copy of the current local value.
func (d *Document[T]) Get() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clone(d.value)
}

func (d *Document[T]) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Update applies fn to a copy of the local value, stores the result locally
// and schedules a debounced save.
func (d *Document[T]) Update(fn func(T) T) T {
	d.mu.Lock()
	d.value = fn(d.clone(d.value))
	d.pending = true
	out := d.clone(d.value)
	d.debouncer.Trigger()
	d.mu.Unlock()

	d.notify()
	return out
}

// SaveNow replaces the local value and writes it immediately, cancelling any
// pending debounced save. The error is returned to the caller.
func (d *Document[T]) SaveNow(ctx context.Context, v T) error {
	d.debouncer.Cancel()

	d.mu.Lock()
	d.value = d.clone(v)
	d.pending = false
	d.saving++
	d.mu.Unlock()
	d.notify()

	err := d.spec.Save(ctx, d.clone(v))

	d.mu.Lock()
	d.saving--
	if err != nil {
		d.lastErr = err
	}
	d.mu.Unlock()

	if err != nil {
		d.log.Error("Failed to save document", "document", d.spec.Name, "error", err)
		return fmt.Errorf("failed to save %s: %w", d.spec.Name, err)
	}
	return nil
}

// Flush writes a pending local change right away.
func (d *Document[T]) Flush(ctx context.Context) error {
	d.debouncer.Cancel()
	return d.persist(ctx)
}

func (d *Document[T]) saveDebounced() {
	// Errors are recorded by persist; the timer has no caller to return to.
	_ = d.persist(context.Background())
}

func (d *Document[T]) persist(ctx context.Context) error {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return nil
	}
	v := d.clone(d.value)
	d.pending = false
	d.saving++
	d.mu.Unlock()

	err := d.spec.Save(ctx, v)

	d.mu.Lock()
	d.saving--
	if err != nil {
		// Local state is kept; the next change saves it again.
		d.lastErr = err
	}
	d.mu.Unlock()

	if err != nil {
		d.log.Error("Failed to save document", "document", d.spec.Name, "error", err)
		d.notify()
		return fmt.Errorf("failed to save %s: %w", d.spec.Name, err)
	}
	d.log.Debug("Saved document", "document", d.spec.Name)
	return nil
}

// Busy reports whether remote updates are currently suppressed.
func (d *Document[T]) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending || d.saving > 0
}

// HandleEvent reloads the value when ev concerns this document and no local
// change is pending or saving.
func (d *Document[T]) HandleEvent(ctx context.Context, ev storage.Event) {
	if ev.Type == storage.EventDocumentChanged && ev.Ref != d.spec.Ref {
		return
	}
	if d.Busy() {
		d.log.Debug("Ignoring remote update during local write", "document", d.spec.Name)
		return
	}

	v, err := d.spec.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			d.log.Warn("Failed to reload document", "document", d.spec.Name, "error", err)
		}
		return
	}

	d.mu.Lock()
	// A local change may have started while the reload was running.
	if d.pending || d.saving > 0 {
		d.mu.Unlock()
		return
	}
	d.value = v
	d.loaded = true
	d.mu.Unlock()

	d.notify()
}

func (d *Document[T]) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// OnChange registers fn to run after every local or remote change.
func (d *Document[T]) OnChange(fn func()) {
	d.mu.Lock()
	d.observers = append(d.observers, fn)
	d.mu.Unlock()
}

func (d *Document[T]) notify() {
	d.mu.Lock()
	observers := append([]func(){}, d.observers...)
	d.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Close cancels a pending debounced save without writing it. Call Flush
// first to keep it.
func (d *Document[T]) Close() {
	d.debouncer.Cancel()
}
