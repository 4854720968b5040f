package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/models"
)

// Collections lists every collection the application writes, in backup order.
var Collections = []string{
	constants.ScheduleCollection,
	constants.NavigationCollection,
	constants.SettingsCollection,
}

// DocumentStore implements Provider by encoding models as JSON documents on a
// Backend. Every save is stamped with the write time and the store's origin.
type DocumentStore struct {
	backend Backend
	origin  string
	now     func() time.Time
}

var _ Provider = (*DocumentStore)(nil)

func NewDocumentStore(backend Backend) *DocumentStore {
	return &DocumentStore{
		backend: backend,
		origin:  uuid.NewString(),
		now:     time.Now,
	}
}

func (s *DocumentStore) Init() error           { return s.backend.Init() }
func (s *DocumentStore) Load() error           { return s.backend.Load() }
func (s *DocumentStore) Close() error          { return s.backend.Close() }
func (s *DocumentStore) Origin() string        { return s.origin }
func (s *DocumentStore) GetConfigPath() string { return s.backend.GetConfigPath() }
func (s *DocumentStore) Backend() Backend      { return s.backend }

func (s *DocumentStore) Watch(ctx context.Context) (<-chan Event, error) {
	return s.backend.Watch(ctx)
}

func (s *DocumentStore) GetSeason(ctx context.Context, seasonNumber int) (models.SeasonDocument, error) {
	var doc models.SeasonDocument
	if err := s.get(ctx, SeasonRef(seasonNumber), &doc); err != nil {
		return models.SeasonDocument{}, err
	}
	if doc.SeasonNumber == 0 {
		doc.SeasonNumber = seasonNumber
	}
	return doc, nil
}

func (s *DocumentStore) SaveSeason(ctx context.Context, doc models.SeasonDocument) error {
	if doc.SeasonNumber < 1 || doc.SeasonNumber > constants.TotalSeasons {
		return fmt.Errorf("invalid season number %d", doc.SeasonNumber)
	}
	doc.UpdatedAt = s.now()
	doc.Origin = s.origin
	return s.put(ctx, SeasonRef(doc.SeasonNumber), doc)
}

func (s *DocumentStore) GetNavigation(ctx context.Context) (models.NavigationPrefs, error) {
	var prefs models.NavigationPrefs
	if err := s.get(ctx, NavigationRef(), &prefs); err != nil {
		return models.NavigationPrefs{}, err
	}
	return prefs, nil
}

func (s *DocumentStore) SaveNavigation(ctx context.Context, prefs models.NavigationPrefs) error {
	prefs.UpdatedAt = s.now()
	prefs.Origin = s.origin
	return s.put(ctx, NavigationRef(), prefs)
}

func (s *DocumentStore) GetSettings(ctx context.Context) (models.UserSettings, error) {
	var settings models.UserSettings
	if err := s.get(ctx, SettingsRef(), &settings); err != nil {
		return models.UserSettings{}, err
	}
	if settings.ChannelSuffixes == nil {
		settings.ChannelSuffixes = map[int]string{}
	}
	return settings, nil
}

func (s *DocumentStore) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	settings.UpdatedAt = s.now()
	settings.Origin = s.origin
	return s.put(ctx, SettingsRef(), settings)
}

// Export returns every stored document of the application's collections.
func (s *DocumentStore) Export(ctx context.Context) ([]Document, error) {
	var docs []Document
	for _, collection := range Collections {
		list, err := s.backend.List(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		docs = append(docs, list...)
	}
	return docs, nil
}

// Import writes raw documents back verbatim, as produced by Export.
func (s *DocumentStore) Import(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		if !json.Valid(doc.Data) {
			return fmt.Errorf("document %s is not valid JSON", doc.Ref)
		}
		if err := s.backend.Put(ctx, doc.Ref, doc.Data); err != nil {
			return fmt.Errorf("failed to write %s: %w", doc.Ref, err)
		}
	}
	return nil
}

func (s *DocumentStore) get(ctx context.Context, ref DocRef, v any) error {
	doc, err := s.backend.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", ref, err)
	}
	return nil
}

func (s *DocumentStore) put(ctx context.Context, ref DocRef, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ref, err)
	}
	if err := s.backend.Put(ctx, ref, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", ref, err)
	}
	return nil
}
