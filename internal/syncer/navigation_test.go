package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/seasonal/internal/models"
)

func setupNavigation(t *testing.T) (*NavigationSession, *testProvider) {
	t.Helper()
	p := newTestProvider(t)
	n := NewNavigationSession(p, testWindow, 12)
	if err := n.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	t.Cleanup(n.Close)
	return n, p
}

func TestNavigationDefaults(t *testing.T) {
	n, _ := setupNavigation(t)
	if n.Day() != 1 || n.Page() != 1 {
		t.Errorf("position = day %d page %d, want 1/1", n.Day(), n.Page())
	}
	if n.TotalPages() != 7 {
		t.Errorf("TotalPages() = %d, want 7", n.TotalPages())
	}
}

func TestNavigationBoundsAreNoops(t *testing.T) {
	n, _ := setupNavigation(t)

	if n.PreviousDay() {
		t.Error("PreviousDay() moved from day 1")
	}
	if n.PreviousPage() {
		t.Error("PreviousPage() moved from page 1")
	}

	if err := n.SetDay(480); err != nil {
		t.Fatalf("SetDay(480) error: %v", err)
	}
	if n.NextDay() {
		t.Error("NextDay() moved past day 480")
	}
	if err := n.SetPage(7); err != nil {
		t.Fatalf("SetPage(7) error: %v", err)
	}
	if n.NextPage() {
		t.Error("NextPage() moved past the last page")
	}

	if !n.PreviousDay() || n.Day() != 479 {
		t.Errorf("PreviousDay() left day %d, want 479", n.Day())
	}
}

func TestNavigationRejectsInvalid(t *testing.T) {
	n, _ := setupNavigation(t)

	for _, day := range []int{0, 481, -3} {
		if err := n.SetDay(day); err == nil {
			t.Errorf("SetDay(%d) succeeded", day)
		}
		if err := n.GoToDay(day); err == nil {
			t.Errorf("GoToDay(%d) succeeded", day)
		}
	}
	for _, page := range []int{0, 8} {
		if err := n.SetPage(page); err == nil {
			t.Errorf("SetPage(%d) succeeded", page)
		}
	}
	if n.Day() != 1 || n.Page() != 1 {
		t.Errorf("invalid input moved to day %d page %d", n.Day(), n.Page())
	}
}

func TestGoToDayResetsPage(t *testing.T) {
	n, _ := setupNavigation(t)

	if err := n.SetPage(4); err != nil {
		t.Fatalf("SetPage() error: %v", err)
	}
	if err := n.SetDay(10); err != nil {
		t.Fatalf("SetDay() error: %v", err)
	}
	if n.Page() != 4 {
		t.Errorf("SetDay changed page to %d, want 4", n.Page())
	}
	if err := n.GoToDay(200); err != nil {
		t.Fatalf("GoToDay() error: %v", err)
	}
	if n.Day() != 200 || n.Page() != 1 {
		t.Errorf("GoToDay(200) = day %d page %d, want 200/1", n.Day(), n.Page())
	}
}

func TestNavigationPersistsAfterDebounce(t *testing.T) {
	n, p := setupNavigation(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		n.NextDay()
	}
	eventually(t, func() bool {
		prefs, err := p.GetNavigation(ctx)
		return err == nil && prefs.CurrentDay == 6
	}, "navigation never persisted")
	if nav, _ := p.counts(); nav != 1 {
		t.Errorf("navigation saves = %d, want 1", nav)
	}
}

func TestNavigationLoadSanitizesStoredValues(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	if err := p.Provider.SaveNavigation(ctx, models.NavigationPrefs{CurrentDay: 900, CurrentPage: 3}); err != nil {
		t.Fatalf("SaveNavigation() error: %v", err)
	}

	n := NewNavigationSession(p, testWindow, 12)
	t.Cleanup(n.Close)
	if err := n.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if n.Day() != 1 || n.Page() != 3 {
		t.Errorf("position = day %d page %d, want 1/3", n.Day(), n.Page())
	}
}

func TestNavigationReset(t *testing.T) {
	n, p := setupNavigation(t)
	ctx := context.Background()

	if err := n.GoToDay(120); err != nil {
		t.Fatalf("GoToDay() error: %v", err)
	}
	if err := n.Reset(ctx); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	prefs, err := p.GetNavigation(ctx)
	if err != nil {
		t.Fatalf("GetNavigation() error: %v", err)
	}
	if prefs.CurrentDay != 1 || prefs.CurrentPage != 1 {
		t.Errorf("stored position = %d/%d, want 1/1", prefs.CurrentDay, prefs.CurrentPage)
	}

	p.mu.Lock()
	p.failNav = errors.New("read-only")
	p.mu.Unlock()
	if err := n.Reset(ctx); err == nil {
		t.Error("Reset() succeeded against a failing store")
	}
	if n.LastError() == nil {
		t.Error("LastError() = nil after failed reset")
	}
}
