package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/storage"
	"github.com/julianstephens/seasonal/internal/storage/memory"
)

const testWindow = 20 * time.Millisecond

// testProvider wraps a real store and can fail or block saves.
type testProvider struct {
	storage.Provider

	mu          sync.Mutex
	seasonSaves map[int]int
	navSaves    int
	setSaves    int
	failSeason  map[int]error
	failOnce    map[int]error // consumed by the next save of that season
	landFailed  bool          // failed season saves still reach the store
	failLoad    error
	failNav     error
	failSet     error
	gate        chan struct{} // when set, SaveSeason blocks until closed
	entered     chan int      // receives the season number of each blocked save
}

func newTestProvider(t *testing.T) *testProvider {
	t.Helper()
	return wrapProvider(t, memory.New())
}

func wrapProvider(t *testing.T, backend storage.Backend) *testProvider {
	t.Helper()
	store := storage.NewDocumentStore(backend)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	return &testProvider{
		Provider:    store,
		seasonSaves: make(map[int]int),
		failSeason:  make(map[int]error),
		failOnce:    make(map[int]error),
	}
}

func (p *testProvider) GetSeason(ctx context.Context, n int) (models.SeasonDocument, error) {
	p.mu.Lock()
	err := p.failLoad
	p.mu.Unlock()
	if err != nil {
		return models.SeasonDocument{}, err
	}
	return p.Provider.GetSeason(ctx, n)
}

func (p *testProvider) SaveSeason(ctx context.Context, doc models.SeasonDocument) error {
	p.mu.Lock()
	p.seasonSaves[doc.SeasonNumber]++
	err := p.failSeason[doc.SeasonNumber]
	if once, ok := p.failOnce[doc.SeasonNumber]; ok {
		err = once
		delete(p.failOnce, doc.SeasonNumber)
	}
	gate, entered, land := p.gate, p.entered, p.landFailed
	p.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- doc.SeasonNumber
		}
		<-gate
	}
	if err != nil {
		if land {
			if serr := p.Provider.SaveSeason(ctx, doc); serr != nil {
				return serr
			}
		}
		return err
	}
	return p.Provider.SaveSeason(ctx, doc)
}

func (p *testProvider) SaveNavigation(ctx context.Context, prefs models.NavigationPrefs) error {
	p.mu.Lock()
	p.navSaves++
	err := p.failNav
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.Provider.SaveNavigation(ctx, prefs)
}

func (p *testProvider) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	p.mu.Lock()
	p.setSaves++
	err := p.failSet
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.Provider.SaveSettings(ctx, settings)
}

func (p *testProvider) saves() map[int]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int]int, len(p.seasonSaves))
	for k, v := range p.seasonSaves {
		out[k] = v
	}
	return out
}

func (p *testProvider) resetCounts() {
	p.mu.Lock()
	p.seasonSaves = make(map[int]int)
	p.navSaves = 0
	p.setSaves = 0
	p.mu.Unlock()
}

func (p *testProvider) counts() (nav, set int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navSaves, p.setSaves
}

// setupSeededSession returns a loaded session over a seeded store.
func setupSeededSession(t *testing.T) (*ScheduleSession, *testProvider) {
	t.Helper()
	p := newTestProvider(t)
	s := NewScheduleSession(p)
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := s.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("SeedIfEmpty() error: %v", err)
	}
	p.resetCounts()
	return s, p
}

func mustEntry(t *testing.T, s *ScheduleSession, id string) models.ScheduleEntry {
	t.Helper()
	e, ok := s.Entry(id)
	if !ok {
		t.Fatalf("entry %s not found", id)
	}
	return e
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func defaultPrefsAt(day int) models.NavigationPrefs {
	prefs := models.DefaultNavigationPrefs()
	prefs.CurrentDay = day
	return prefs
}
