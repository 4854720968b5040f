package syncer

import (
	"context"
	"sync"

	"github.com/julianstephens/seasonal/internal/storage"
)

// Subscription is a running watch of a provider.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Subscribe watches provider and calls handler for every event on a single
// goroutine, in order, until Unsubscribe or ctx cancellation.
func Subscribe(ctx context.Context, provider storage.Provider, handler func(storage.Event)) (*Subscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	events, err := provider.Watch(watchCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for ev := range events {
			if watchCtx.Err() != nil {
				return
			}
			handler(ev)
		}
	}()
	return sub, nil
}

// Unsubscribe stops the watch and waits for the handler goroutine to exit.
// Only the first call has any effect. It must not be called from handler.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Done is closed once no further events will be delivered.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
