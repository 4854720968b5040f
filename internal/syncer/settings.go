package syncer

import (
	"context"
	"strings"
	"time"

	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/storage"
)

// SettingsSession holds the per-channel suffixes.
type SettingsSession struct {
	doc *Document[models.UserSettings]
}

func NewSettingsSession(provider storage.Provider, window time.Duration) *SettingsSession {
	spec := DocumentSpec[models.UserSettings]{
		Name:    "settings",
		Ref:     storage.SettingsRef(),
		Load:    provider.GetSettings,
		Save:    provider.SaveSettings,
		Default: func() models.UserSettings { return models.UserSettings{ChannelSuffixes: map[int]string{}} },
		Clone:   models.UserSettings.Clone,
	}
	return &SettingsSession{
		doc: NewDocument(spec, window, logger.With("component", "settings")),
	}
}

func (s *SettingsSession) Load(ctx context.Context) error { return s.doc.Load(ctx) }

func (s *SettingsSession) Settings() models.UserSettings { return s.doc.Get() }

// Suffixes returns a copy of the suffix map.
func (s *SettingsSession) Suffixes() map[int]string { return s.doc.Get().ChannelSuffixes }

// ChannelName is the display name of a channel with the current suffixes.
func (s *SettingsSession) ChannelName(index int) string {
	return schedule.ChannelName(index, s.Suffixes())
}

// UpdateChannelSuffix sets or, for an empty suffix, removes the suffix of one
// channel. The change is saved after the debounce window.
func (s *SettingsSession) UpdateChannelSuffix(index int, suffix string) error {
	if err := schedule.ValidateChannelIndex(index); err != nil {
		return err
	}
	suffix = strings.TrimSpace(suffix)
	s.doc.Update(func(v models.UserSettings) models.UserSettings {
		if suffix == "" {
			delete(v.ChannelSuffixes, index)
		} else {
			v.ChannelSuffixes[index] = suffix
		}
		return v
	})
	return nil
}

// BulkUpdateChannelSuffixes replaces the whole suffix map and saves it
// immediately. Save errors are returned.
func (s *SettingsSession) BulkUpdateChannelSuffixes(ctx context.Context, suffixes map[int]string) error {
	next := models.UserSettings{ChannelSuffixes: make(map[int]string, len(suffixes))}
	for index, suffix := range suffixes {
		if err := schedule.ValidateChannelIndex(index); err != nil {
			return err
		}
		if suffix = strings.TrimSpace(suffix); suffix != "" {
			next.ChannelSuffixes[index] = suffix
		}
	}
	return s.doc.SaveNow(ctx, next)
}

func (s *SettingsSession) HandleEvent(ctx context.Context, ev storage.Event) {
	s.doc.HandleEvent(ctx, ev)
}

func (s *SettingsSession) Flush(ctx context.Context) error { return s.doc.Flush(ctx) }
func (s *SettingsSession) Close()                          { s.doc.Close() }
func (s *SettingsSession) LastError() error                { return s.doc.LastError() }
func (s *SettingsSession) OnChange(fn func())              { s.doc.OnChange(fn) }
