package storage

import (
	"context"

	"github.com/julianstephens/seasonal/internal/models"
)

// Provider is the typed document store used by the sync sessions, the CLI
// and the HTTP API.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Schedule (one document per season)
	GetSeason(ctx context.Context, seasonNumber int) (models.SeasonDocument, error)
	SaveSeason(ctx context.Context, doc models.SeasonDocument) error

	// Navigation
	GetNavigation(ctx context.Context) (models.NavigationPrefs, error)
	SaveNavigation(ctx context.Context, prefs models.NavigationPrefs) error

	// Settings
	GetSettings(ctx context.Context) (models.UserSettings, error)
	SaveSettings(ctx context.Context, settings models.UserSettings) error

	// Watch streams change events until ctx is cancelled. The returned
	// channel is closed when the watch ends.
	Watch(ctx context.Context) (<-chan Event, error)

	// Origin identifies documents written by this provider instance.
	Origin() string

	// Utils
	GetConfigPath() string
}

// Backend stores raw JSON documents. Every backend package implements it and
// DocumentStore layers the typed Provider on top.
type Backend interface {
	Init() error
	Load() error
	Close() error

	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, ref DocRef) (Document, error)
	Put(ctx context.Context, ref DocRef, data []byte) error
	// List returns every document of a collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)
	Watch(ctx context.Context) (<-chan Event, error)

	GetConfigPath() string
}
