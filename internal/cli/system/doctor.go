package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/storage"
)

// SchemaVersioner is implemented by backends with a migrated schema.
type SchemaVersioner interface {
	SchemaVersion() (current, latest int, err error)
}

type DoctorCmd struct{}

type check struct {
	name     string
	run      func(context.Context, *cli.Context) error
	needsDB  bool
	warnOnly bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Grid complete", run: checkGrid, needsDB: true},
	{name: "Navigation", run: checkNavigation, needsDB: true},
	{name: "Channel suffixes", run: checkSuffixes, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	if err := checkStoreReachable(bg, ctx); err != nil {
		ctx.Printf("❌ Store reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Store reachable: OK (%s)\n", cli.StoreKind(ctx.Store.Backend()))
		dbReachable = true
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx context.Context, app *cli.Context) error {
	if err := app.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, err := app.Store.GetNavigation(ctx); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read from store: %w", err)
	}
	return nil
}

func checkSchemaVersion(_ context.Context, app *cli.Context) error {
	v, ok := app.Store.Backend().(SchemaVersioner)
	if !ok {
		// Document backends have no schema
		return nil
	}
	current, latest, err := v.SchemaVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d. Run 'seasonal init' to migrate", current, latest)
	}
	return nil
}

// checkGrid verifies every season document holds exactly its own entries,
// every id is unique and the whole grid is present.
func checkGrid(ctx context.Context, app *cli.Context) error {
	seen := make(map[string]bool, constants.TotalEntries)
	var problems []error
	for n := 1; n <= constants.TotalSeasons; n++ {
		doc, err := app.Store.GetSeason(ctx, n)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				problems = append(problems, fmt.Errorf("season %d document is missing", n))
				continue
			}
			return err
		}
		for _, e := range doc.Entries {
			if seen[e.ID] {
				problems = append(problems, fmt.Errorf("duplicate entry %s", e.ID))
			}
			seen[e.ID] = true
			if got := schedule.SeasonOfEntryID(e.ID); got != n {
				problems = append(problems, fmt.Errorf("entry %s stored in season %d, belongs to season %d", e.ID, n, got))
			}
		}
	}
	if len(seen) != constants.TotalEntries {
		problems = append(problems, fmt.Errorf("%d entries stored, expected %d", len(seen), constants.TotalEntries))
	}
	if len(problems) > 5 {
		problems = append(problems[:5], fmt.Errorf("and %d more", len(problems)-5))
	}
	return errors.Join(problems...)
}

func checkNavigation(ctx context.Context, app *cli.Context) error {
	prefs, err := app.Store.GetNavigation(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := schedule.ValidateDay(prefs.CurrentDay); err != nil {
		return fmt.Errorf("stored day: %w", err)
	}
	return schedule.ValidatePage(prefs.CurrentPage, app.Config.ChannelsPerPage)
}

func checkSuffixes(ctx context.Context, app *cli.Context) error {
	settings, err := app.Store.GetSettings(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for index := range settings.ChannelSuffixes {
		if err := schedule.ValidateChannelIndex(index); err != nil {
			return err
		}
	}
	return nil
}

func checkBackupsPresent(_ context.Context, app *cli.Context) error {
	mgr := app.BackupManager()
	backups, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s. Run 'seasonal backup create'", mgr.GetBackupDir())
	}
	return nil
}
