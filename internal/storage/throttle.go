package storage

import (
	"sync"
	"time"
)

// Throttle coalesces bursts of change notifications so listeners reload once
// per burst instead of on every single write.
type Throttle struct {
	sendMu  sync.Mutex // held while delivering a flushed burst
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[DocRef]struct{}
	delay   time.Duration
	send    func(Event)
	stopped bool
}

func NewThrottle(delay time.Duration, send func(Event)) *Throttle {
	return &Throttle{
		delay:   delay,
		send:    send,
		pending: make(map[EventType]map[DocRef]struct{}),
	}
}

func (t *Throttle) Enqueue(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[DocRef]struct{})
	}
	t.pending[ev.Type][ev.Ref] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, t.flush)
	}
}

func (t *Throttle) flush() {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	pending := t.pending
	t.pending = make(map[EventType]map[DocRef]struct{})
	t.timer = nil
	t.mu.Unlock()

	// One invalidation covers every individual change in the burst.
	if _, ok := pending[EventInvalidated]; ok {
		t.send(Event{Type: EventInvalidated})
		return
	}
	for ref := range pending[EventDocumentChanged] {
		t.send(Event{Type: EventDocumentChanged, Ref: ref})
	}
}

// Stop cancels any pending flush and waits for a running one to finish, so
// the send callback is never invoked once Stop returns.
func (t *Throttle) Stop() {
	t.mu.Lock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	t.sendMu.Lock()
	t.sendMu.Unlock()
}
