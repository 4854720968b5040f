package postgres

import (
	"context"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/storage"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
)

// Watch listens on the documents notification channel. Payloads are
// "collection/id" refs written by the documents trigger. A dropped
// connection is reported as EventInvalidated once the listener reconnects,
// since notifications sent while disconnected are lost.
func (s *Store) Watch(ctx context.Context) (<-chan storage.Event, error) {
	if s.db == nil {
		return nil, storage.ErrNotInitialized
	}

	listener := pq.NewListener(s.connStr, listenerMinReconnect, listenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("Postgres listener event", "event", ev, "error", err)
			}
		})
	if err := listener.Listen(constants.PostgresNotifyChannel); err != nil {
		listener.Close()
		return nil, err
	}

	events := make(chan storage.Event, constants.WatchBufferSize)

	go func() {
		defer close(events)
		defer listener.Close()

		send := func(ev storage.Event) {
			select {
			case events <- ev:
			default:
			}
		}
		throttle := storage.NewThrottle(constants.WatchThrottleDelay, send)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil after a reconnect
				if n == nil {
					throttle.Enqueue(storage.Event{Type: storage.EventInvalidated})
					continue
				}
				ref, err := storage.ParseDocRef(n.Extra)
				if err != nil {
					throttle.Enqueue(storage.Event{Type: storage.EventInvalidated})
					continue
				}
				throttle.Enqueue(storage.Event{Type: storage.EventDocumentChanged, Ref: ref})
			case <-time.After(90 * time.Second):
				// Ping keeps an idle listener connection from going stale.
				if err := listener.Ping(); err != nil {
					logger.Debug("Postgres listener ping failed", "error", err)
				}
			}
		}
	}()

	return events, nil
}
