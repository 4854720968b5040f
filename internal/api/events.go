package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/storage"
)

// eventPayload is the data line of one SSE message.
type eventPayload struct {
	Type string         `json:"type"`
	Ref  storage.DocRef `json:"ref"`
}

// broker fans store events out to every connected stream. Slow clients drop
// events rather than block the workspace.
type broker struct {
	mu     sync.Mutex
	subs   map[chan eventPayload]struct{}
	closed bool
}

func newBroker() *broker {
	return &broker{subs: make(map[chan eventPayload]struct{})}
}

func (b *broker) subscribe() (chan eventPayload, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false
	}
	ch := make(chan eventPayload, constants.WatchBufferSize)
	b.subs[ch] = struct{}{}
	return ch, true
}

func (b *broker) unsubscribe(ch chan eventPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *broker) publish(ev storage.Event) {
	msg := eventPayload{Type: ev.Type.String(), Ref: ev.Ref}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	ch, ok := s.events.subscribe()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer s.events.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.log.Warn("Failed to encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
			flusher.Flush()
		}
	}
}
