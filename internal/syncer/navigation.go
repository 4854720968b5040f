package syncer

import (
	"context"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/models"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/storage"
)

// NavigationSession is the persisted calendar position.
type NavigationSession struct {
	doc     *Document[models.NavigationPrefs]
	perPage int
}

func NewNavigationSession(provider storage.Provider, window time.Duration, perPage int) *NavigationSession {
	if perPage <= 0 {
		perPage = constants.ChannelsPerPage
	}
	spec := DocumentSpec[models.NavigationPrefs]{
		Name:    "navigation",
		Ref:     storage.NavigationRef(),
		Load:    provider.GetNavigation,
		Save:    provider.SaveNavigation,
		Default: models.DefaultNavigationPrefs,
	}
	return &NavigationSession{
		doc:     NewDocument(spec, window, logger.With("component", "navigation")),
		perPage: perPage,
	}
}

// Load reads the stored position. Out-of-range stored values fall back to
// the first day or page.
func (n *NavigationSession) Load(ctx context.Context) error {
	if err := n.doc.Load(ctx); err != nil {
		return err
	}
	prefs := n.doc.Get()
	if schedule.ValidateDay(prefs.CurrentDay) != nil || schedule.ValidatePage(prefs.CurrentPage, n.perPage) != nil {
		fixed := n.sanitize(prefs)
		n.doc.Update(func(models.NavigationPrefs) models.NavigationPrefs { return fixed })
	}
	return nil
}

func (n *NavigationSession) sanitize(p models.NavigationPrefs) models.NavigationPrefs {
	if schedule.ValidateDay(p.CurrentDay) != nil {
		p.CurrentDay = 1
	}
	if schedule.ValidatePage(p.CurrentPage, n.perPage) != nil {
		p.CurrentPage = 1
	}
	return p
}

func (n *NavigationSession) Prefs() models.NavigationPrefs { return n.doc.Get() }
func (n *NavigationSession) Day() int                      { return n.doc.Get().CurrentDay }
func (n *NavigationSession) Page() int                     { return n.doc.Get().CurrentPage }
func (n *NavigationSession) TotalPages() int               { return schedule.TotalPages(n.perPage) }
func (n *NavigationSession) PerPage() int                  { return n.perPage }

// SetDay moves to day and keeps the current page.
func (n *NavigationSession) SetDay(day int) error {
	if err := schedule.ValidateDay(day); err != nil {
		return err
	}
	n.doc.Update(func(p models.NavigationPrefs) models.NavigationPrefs {
		p.CurrentDay = day
		return p
	})
	return nil
}

func (n *NavigationSession) SetPage(page int) error {
	if err := schedule.ValidatePage(page, n.perPage); err != nil {
		return err
	}
	n.doc.Update(func(p models.NavigationPrefs) models.NavigationPrefs {
		p.CurrentPage = page
		return p
	})
	return nil
}

// GoToDay jumps to day and resets to the first page.
func (n *NavigationSession) GoToDay(day int) error {
	if err := schedule.ValidateDay(day); err != nil {
		return err
	}
	n.doc.Update(func(p models.NavigationPrefs) models.NavigationPrefs {
		p.CurrentDay = day
		p.CurrentPage = 1
		return p
	})
	return nil
}

// GoToPage is SetPage under the name the pagination strip uses.
func (n *NavigationSession) GoToPage(page int) error {
	return n.SetPage(page)
}

// NextDay, PreviousDay, NextPage and PreviousPage do nothing at the bounds
// and report whether they moved.
func (n *NavigationSession) NextDay() bool {
	day := n.Day()
	if day >= constants.TotalDays {
		return false
	}
	return n.SetDay(day+1) == nil
}

func (n *NavigationSession) PreviousDay() bool {
	day := n.Day()
	if day <= 1 {
		return false
	}
	return n.SetDay(day-1) == nil
}

func (n *NavigationSession) NextPage() bool {
	page := n.Page()
	if page >= n.TotalPages() {
		return false
	}
	return n.SetPage(page+1) == nil
}

func (n *NavigationSession) PreviousPage() bool {
	page := n.Page()
	if page <= 1 {
		return false
	}
	return n.SetPage(page-1) == nil
}

// Reset writes the first day and page immediately.
func (n *NavigationSession) Reset(ctx context.Context) error {
	return n.doc.SaveNow(ctx, models.DefaultNavigationPrefs())
}

func (n *NavigationSession) HandleEvent(ctx context.Context, ev storage.Event) {
	n.doc.HandleEvent(ctx, ev)
}

func (n *NavigationSession) Flush(ctx context.Context) error { return n.doc.Flush(ctx) }
func (n *NavigationSession) Close()                          { n.doc.Close() }
func (n *NavigationSession) LastError() error                { return n.doc.LastError() }
func (n *NavigationSession) OnChange(fn func())              { n.doc.OnChange(fn) }
