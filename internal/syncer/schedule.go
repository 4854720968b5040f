package syncer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/storage"
)

var (
	ErrNotLoaded  = errors.New("schedule not loaded")
	ErrSaveFailed = errors.New("failed to save schedule")
)

// ToggleResult describes what a toggle changed locally.
type ToggleResult struct {
	EntryID   string   `json:"entryId"`
	Completed bool     `json:"completed"`
	Updated   []string `json:"updated"` // target first, then cascaded entries by day
	Seasons   []int    `json:"seasons"` // season documents written
}

// ScheduleSession holds the entry grid in memory and keeps it in sync with
// the store. Toggles apply locally at once, persist only the affected season
// documents and roll back on failure. Remote changes to a season are ignored
// while a local write to that season is in flight.
type ScheduleSession struct {
	provider storage.Provider
	log      *log.Logger

	mu        sync.Mutex
	entries   []models.ScheduleEntry
	index     map[string]int
	byChannel map[string][]int
	byDay     map[int][]int
	bySeason  map[int][]int
	inFlight  map[int]int
	loaded    bool
	lastErr   error
	observers []func()

	// writeMu serializes writes per season so a later write always carries
	// the latest local state.
	writeMu [constants.TotalSeasons + 1]sync.Mutex

	sub *Subscription
}

func NewScheduleSession(provider storage.Provider) *ScheduleSession {
	s := &ScheduleSession{
		provider: provider,
		log:      logger.With("component", "schedule"),
		inFlight: make(map[int]int),
	}
	s.reset(nil)
	return s
}

// reset replaces the grid and rebuilds the lookup tables. Caller holds s.mu
// or has exclusive access.
func (s *ScheduleSession) reset(entries []models.ScheduleEntry) {
	s.entries = make([]models.ScheduleEntry, 0, len(entries))
	s.index = make(map[string]int, len(entries))
	s.byChannel = make(map[string][]int)
	s.byDay = make(map[int][]int)
	s.bySeason = make(map[int][]int)
	for _, e := range entries {
		s.add(e)
	}
}

// add indexes one entry and reports whether it was kept. Entries whose
// channel lies past the last season have no document to live in and are
// dropped.
func (s *ScheduleSession) add(e models.ScheduleEntry) bool {
	if _, dup := s.index[e.ID]; dup {
		return false
	}
	season := schedule.SeasonOfEntryID(e.ID)
	if !schedule.ValidSeason(season) {
		s.log.Warn("Ignoring entry outside the grid", "entry", e.ID, "season", season)
		return false
	}
	i := len(s.entries)
	s.entries = append(s.entries, e)
	s.index[e.ID] = i
	s.byChannel[e.ChannelID] = append(s.byChannel[e.ChannelID], i)
	s.byDay[schedule.EntryDay(e)] = append(s.byDay[schedule.EntryDay(e)], i)
	s.bySeason[season] = append(s.bySeason[season], i)
	return true
}

// Load reads every season document concurrently and replaces the local grid.
// Missing seasons are simply empty. A failure is recorded and returned; the
// caller decides whether to retry, and nothing is seeded.
func (s *ScheduleSession) Load(ctx context.Context) error {
	docs := make([]models.SeasonDocument, constants.TotalSeasons+1)
	g, gctx := errgroup.WithContext(ctx)
	for n := 1; n <= constants.TotalSeasons; n++ {
		g.Go(func() error {
			doc, err := s.provider.GetSeason(gctx, n)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return nil
				}
				return err
			}
			docs[n] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Error("Failed to load schedule", "error", err)
		s.notify()
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	var entries []models.ScheduleEntry
	for n := 1; n <= constants.TotalSeasons; n++ {
		entries = append(entries, docs[n].Entries...)
	}

	s.mu.Lock()
	s.reset(entries)
	s.loaded = true
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Info("Loaded schedule", "entries", len(entries))
	s.notify()
	return nil
}

// SeedIfEmpty generates and saves the full grid when the store holds no
// entries. It reports whether seeding happened. Save errors are returned.
func (s *ScheduleSession) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return false, ErrNotLoaded
	}
	empty := len(s.entries) == 0
	s.mu.Unlock()

	if !empty {
		return false, nil
	}

	s.log.Info("Seeding empty schedule", "entries", constants.TotalEntries)
	if err := s.SaveAll(ctx, schedule.Generate()); err != nil {
		return false, err
	}
	return true, nil
}

// SaveAll writes entries as the complete grid, one document per season, and
// adopts them locally once every season is saved. Errors are returned.
func (s *ScheduleSession) SaveAll(ctx context.Context, entries []models.ScheduleEntry) error {
	groups := schedule.GroupBySeason(entries)
	seasons := make([]int, 0, len(groups))
	for n := range groups {
		if !schedule.ValidSeason(n) {
			s.log.Warn("Skipping entries outside the grid", "season", n, "entries", len(groups[n]))
			continue
		}
		seasons = append(seasons, n)
	}
	sort.Ints(seasons)

	s.beginWrite(seasons)
	defer s.endWrite(seasons)

	var g errgroup.Group
	for _, n := range seasons {
		doc := models.SeasonDocument{SeasonNumber: n, Entries: groups[n]}
		g.Go(func() error {
			s.writeMu[n].Lock()
			defer s.writeMu[n].Unlock()
			return s.provider.SaveSeason(ctx, doc)
		})
	}
	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Error("Failed to save schedule", "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	s.mu.Lock()
	s.reset(entries)
	s.loaded = true
	s.mu.Unlock()
	s.notify()
	return nil
}

// Toggle flips the completion of one entry. Completing an entry also
// completes every earlier pending day of the same channel; un-completing
// touches only the target. An unknown id is a no-op. On save failure every
// entry of the update set is restored, the restored seasons are written back
// and the error is returned.
func (s *ScheduleSession) Toggle(ctx context.Context, entryID string) (ToggleResult, error) {
	s.mu.Lock()
	i, ok := s.index[entryID]
	if !ok {
		s.mu.Unlock()
		s.log.Debug("Toggle of unknown entry ignored", "entry", entryID)
		return ToggleResult{}, nil
	}

	target := s.entries[i]
	newCompleted := !target.Completed
	updateSet := []int{i}
	if newCompleted {
		targetDay := schedule.EntryDay(target)
		var earlier []int
		for _, j := range s.byChannel[target.ChannelID] {
			e := s.entries[j]
			if !e.Completed && schedule.EntryDay(e) < targetDay {
				earlier = append(earlier, j)
			}
		}
		sort.Slice(earlier, func(a, b int) bool {
			return schedule.EntryDay(s.entries[earlier[a]]) < schedule.EntryDay(s.entries[earlier[b]])
		})
		updateSet = append(updateSet, earlier...)
	}

	// Immutable pre-toggle snapshot of the update set.
	snapshot := make(map[int]bool, len(updateSet))
	result := ToggleResult{EntryID: entryID, Completed: newCompleted}
	seasonSet := make(map[int]struct{})
	for _, j := range updateSet {
		snapshot[j] = s.entries[j].Completed
		s.entries[j].Completed = newCompleted
		result.Updated = append(result.Updated, s.entries[j].ID)
		seasonSet[schedule.SeasonOfEntryID(s.entries[j].ID)] = struct{}{}
	}
	for n := range seasonSet {
		result.Seasons = append(result.Seasons, n)
		// Mark in flight before unlocking so no remote reload can slip in.
		s.inFlight[n]++
	}
	sort.Ints(result.Seasons)
	s.mu.Unlock()

	s.notify()

	var once sync.Once
	rollback := func() {
		once.Do(func() {
			s.mu.Lock()
			for j, prev := range snapshot {
				s.entries[j].Completed = prev
			}
			s.mu.Unlock()
		})
	}

	err := s.persistSeasons(ctx, result.Seasons, rollback)
	if err != nil {
		rollback()
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()

		// A queued write to the same season, or a save that failed after
		// landing, may have stored the optimistic values. Overwrite them
		// while the seasons are still marked in flight.
		for _, n := range result.Seasons {
			if werr := s.writeSeason(ctx, n, nil); werr != nil {
				s.log.Warn("Failed to write back rolled back season", "season", n, "error", werr)
			}
		}
		s.endWrite(result.Seasons)

		s.log.Error("Toggle failed, rolled back", "entry", entryID, "updated", len(updateSet), "error", err)
		s.notify()
		return result, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	s.endWrite(result.Seasons)

	s.log.Debug("Toggled entry", "entry", entryID, "completed", newCompleted, "updated", len(updateSet))
	return result, nil
}

// persistSeasons writes the given seasons concurrently from current local
// state and waits for all of them. Any failure fails the whole call.
func (s *ScheduleSession) persistSeasons(ctx context.Context, seasons []int, onFail func()) error {
	var g errgroup.Group
	for _, n := range seasons {
		g.Go(func() error {
			return s.writeSeason(ctx, n, onFail)
		})
	}
	return g.Wait()
}

// writeSeason saves season n from local state. onFail, if set, runs before
// the season's write lock is released so a queued write never reads state
// that is about to be rolled back.
func (s *ScheduleSession) writeSeason(ctx context.Context, n int, onFail func()) error {
	if !schedule.ValidSeason(n) {
		return fmt.Errorf("season %d is outside the grid", n)
	}
	s.writeMu[n].Lock()
	defer s.writeMu[n].Unlock()

	s.mu.Lock()
	doc := models.SeasonDocument{
		SeasonNumber: n,
		Entries:      make([]models.ScheduleEntry, 0, len(s.bySeason[n])),
	}
	for _, j := range s.bySeason[n] {
		doc.Entries = append(doc.Entries, s.entries[j])
	}
	s.mu.Unlock()

	err := s.provider.SaveSeason(ctx, doc)
	if err != nil && onFail != nil {
		onFail()
	}
	return err
}

func (s *ScheduleSession) beginWrite(seasons []int) {
	s.mu.Lock()
	for _, n := range seasons {
		s.inFlight[n]++
	}
	s.mu.Unlock()
}

func (s *ScheduleSession) endWrite(seasons []int) {
	s.mu.Lock()
	for _, n := range seasons {
		s.inFlight[n]--
		if s.inFlight[n] <= 0 {
			delete(s.inFlight, n)
		}
	}
	s.mu.Unlock()
}

// HandleEvent reconciles a store change into the local grid.
func (s *ScheduleSession) HandleEvent(ctx context.Context, ev storage.Event) {
	switch ev.Type {
	case storage.EventInvalidated:
		for n := 1; n <= constants.TotalSeasons; n++ {
			s.reloadSeason(ctx, n)
		}
	case storage.EventDocumentChanged:
		if n, ok := ev.Ref.SeasonNumber(); ok {
			s.reloadSeason(ctx, n)
		}
	}
}

func (s *ScheduleSession) seasonBusy(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[n] > 0
}

func (s *ScheduleSession) reloadSeason(ctx context.Context, n int) {
	if s.seasonBusy(n) {
		s.log.Debug("Ignoring remote update during local write", "season", n)
		return
	}

	doc, err := s.provider.GetSeason(ctx, n)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("Failed to reload season", "season", n, "error", err)
		}
		return
	}

	s.mu.Lock()
	if s.inFlight[n] > 0 {
		s.mu.Unlock()
		return
	}
	changed := false
	for _, remote := range doc.Entries {
		j, ok := s.index[remote.ID]
		if !ok {
			// Grid written by another session, e.g. seeding.
			if s.add(remote) {
				changed = true
			}
			continue
		}
		if s.entries[j].Completed != remote.Completed {
			s.entries[j].Completed = remote.Completed
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.log.Debug("Applied remote season update", "season", n, "origin", doc.Origin)
		s.notify()
	}
}

// Start subscribes to store changes. Close stops the subscription.
func (s *ScheduleSession) Start(ctx context.Context) error {
	sub, err := Subscribe(ctx, s.provider, func(ev storage.Event) {
		s.HandleEvent(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to schedule: %w", err)
	}
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

func (s *ScheduleSession) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Entries returns a copy of the whole grid.
func (s *ScheduleSession) Entries() []models.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ScheduleEntry(nil), s.entries...)
}

// Entry looks up one entry by id.
func (s *ScheduleSession) Entry(id string) (models.ScheduleEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return models.ScheduleEntry{}, false
	}
	return s.entries[i], true
}

// EntriesForDay returns the entries of one day ordered by channel.
func (s *ScheduleSession) EntriesForDay(day int) []models.ScheduleEntry {
	s.mu.Lock()
	out := make([]models.ScheduleEntry, 0, len(s.byDay[day]))
	for _, j := range s.byDay[day] {
		out = append(out, s.entries[j])
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(a, b int) bool {
		ca, _, _ := schedule.ParseEntryID(out[a].ID)
		cb, _, _ := schedule.ParseEntryID(out[b].ID)
		return ca < cb
	})
	return out
}

func (s *ScheduleSession) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *ScheduleSession) Stats() models.ScheduleStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.ScheduleStats{
		TotalDays:     constants.TotalDays,
		TotalChannels: constants.TotalChannels,
		TotalEntries:  len(s.entries),
	}
	for _, e := range s.entries {
		if e.Completed {
			stats.CompletedEntries++
		}
	}
	if stats.TotalEntries > 0 {
		stats.PercentCompleted = int(math.Round(float64(stats.CompletedEntries) * 100 / float64(stats.TotalEntries)))
	}
	return stats
}

// LastError returns the most recent load or save failure.
func (s *ScheduleSession) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnChange registers fn to run after every local or remote change.
func (s *ScheduleSession) OnChange(fn func()) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *ScheduleSession) notify() {
	s.mu.Lock()
	observers := append([]func(){}, s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}
