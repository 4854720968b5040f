package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/storage"
)

// Options tunes a Workspace.
type Options struct {
	DebounceWindow  time.Duration
	ChannelsPerPage int
	// Seed generates the grid when the store is empty.
	Seed bool
	// Watch subscribes to store changes.
	Watch bool
}

// Workspace bundles the three sessions over one provider and feeds them from
// a single subscription.
type Workspace struct {
	Provider   storage.Provider
	Schedule   *ScheduleSession
	Navigation *NavigationSession
	Settings   *SettingsSession

	mu        sync.Mutex
	sub       *Subscription
	listeners []func(storage.Event)
}

func NewWorkspace(provider storage.Provider, opts Options) *Workspace {
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = constants.DefaultDebounceWindow
	}
	return &Workspace{
		Provider:   provider,
		Schedule:   NewScheduleSession(provider),
		Navigation: NewNavigationSession(provider, opts.DebounceWindow, opts.ChannelsPerPage),
		Settings:   NewSettingsSession(provider, opts.DebounceWindow),
	}
}

// OpenWorkspace loads every session, seeds and subscribes as requested.
func OpenWorkspace(ctx context.Context, provider storage.Provider, opts Options) (*Workspace, error) {
	w := NewWorkspace(provider, opts)

	if err := w.Schedule.Load(ctx); err != nil {
		return nil, err
	}
	if opts.Seed {
		seeded, err := w.Schedule.SeedIfEmpty(ctx)
		if err != nil {
			return nil, err
		}
		if seeded {
			logger.Info("Seeded schedule grid")
		}
	}
	if err := w.Navigation.Load(ctx); err != nil {
		return nil, err
	}
	if err := w.Settings.Load(ctx); err != nil {
		return nil, err
	}

	if opts.Watch {
		if err := w.Start(ctx); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Start subscribes to the provider and dispatches every event to the
// sessions and then to registered listeners.
func (w *Workspace) Start(ctx context.Context) error {
	sub, err := Subscribe(ctx, w.Provider, func(ev storage.Event) {
		w.dispatch(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	w.mu.Lock()
	w.sub = sub
	w.mu.Unlock()
	return nil
}

func (w *Workspace) dispatch(ctx context.Context, ev storage.Event) {
	switch {
	case ev.Type == storage.EventInvalidated:
		w.Schedule.HandleEvent(ctx, ev)
		w.Navigation.HandleEvent(ctx, ev)
		w.Settings.HandleEvent(ctx, ev)
	case ev.Ref.Collection == constants.ScheduleCollection:
		w.Schedule.HandleEvent(ctx, ev)
	case ev.Ref == storage.NavigationRef():
		w.Navigation.HandleEvent(ctx, ev)
	case ev.Ref == storage.SettingsRef():
		w.Settings.HandleEvent(ctx, ev)
	}

	w.mu.Lock()
	listeners := append([]func(storage.Event){}, w.listeners...)
	w.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// OnEvent registers fn to receive every store event after the sessions have
// applied it.
func (w *Workspace) OnEvent(fn func(storage.Event)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Flush writes pending navigation and settings changes.
func (w *Workspace) Flush(ctx context.Context) error {
	return errors.Join(w.Navigation.Flush(ctx), w.Settings.Flush(ctx))
}

// Close flushes pending changes, stops the subscription and cancels timers.
// The provider stays open.
func (w *Workspace) Close(ctx context.Context) error {
	err := w.Flush(ctx)

	w.mu.Lock()
	sub := w.sub
	w.sub = nil
	w.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}

	w.Schedule.Close()
	w.Navigation.Close()
	w.Settings.Close()
	return err
}

// ChannelCard is one channel as shown on a calendar page.
type ChannelCard struct {
	Index int                  `json:"index"`
	Name  string               `json:"name"`
	Entry models.ScheduleEntry `json:"entry"`
}

// Cards pairs the given channel indexes with their entry on day and their
// display name. Channels without an entry get a pending entry with the
// expected id.
func (w *Workspace) Cards(day int, indexes []int) []ChannelCard {
	suffixes := w.Settings.Suffixes()
	cards := make([]ChannelCard, 0, len(indexes))
	for _, idx := range indexes {
		id := schedule.EntryID(idx, day)
		entry, ok := w.Schedule.Entry(id)
		if !ok {
			entry = models.ScheduleEntry{ID: id, ChannelID: schedule.BaseChannelName(idx), Date: strconv.Itoa(day)}
		}
		cards = append(cards, ChannelCard{
			Index: idx,
			Name:  schedule.ChannelName(idx, suffixes),
			Entry: entry,
		})
	}
	return cards
}

// Page returns the cards of one page of a day.
func (w *Workspace) Page(day, page int) ([]ChannelCard, error) {
	if err := schedule.ValidateDay(day); err != nil {
		return nil, err
	}
	perPage := w.Navigation.PerPage()
	if err := schedule.ValidatePage(page, perPage); err != nil {
		return nil, err
	}
	return w.Cards(day, schedule.ChannelIndexesForPage(day, page, perPage)), nil
}
