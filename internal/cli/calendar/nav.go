package calendar

import (
	"context"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/syncer"
)

type NavCmd struct {
	Show  NavShowCmd  `cmd:"" help:"Show the saved calendar position." default:"1"`
	Set   NavSetCmd   `cmd:"" help:"Move the saved calendar position."`
	Reset NavResetCmd `cmd:"" help:"Reset the saved position to day 1, page 1."`
}

type NavShowCmd struct{}

func (c *NavShowCmd) Run(ctx *cli.Context) error {
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		day := ws.Navigation.Day()
		ctx.Printf("Day %d (%s), page %d of %d\n", day, schedule.FormatDayDate(day), ws.Navigation.Page(), ws.Navigation.TotalPages())
		return nil
	})
}

type NavSetCmd struct {
	Day  int `arg:"" help:"Day number (1-480)."`
	Page int `arg:"" optional:"" help:"Page number. Defaults to 1."`
}

func (c *NavSetCmd) Run(ctx *cli.Context) error {
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		if err := ws.Navigation.GoToDay(c.Day); err != nil {
			return err
		}
		if c.Page != 0 {
			if err := ws.Navigation.SetPage(c.Page); err != nil {
				return err
			}
		}
		ctx.Printf("✓ Moved to day %d, page %d\n", ws.Navigation.Day(), ws.Navigation.Page())
		return nil
	})
}

// NavResetCmd writes day 1, page 1 straight to the store. A failed write
// is returned, so the process exits 1.
type NavResetCmd struct{}

func (c *NavResetCmd) Run(ctx *cli.Context) error {
	nav := syncer.NewNavigationSession(ctx.Store, ctx.Config.DebounceWindow, ctx.Config.ChannelsPerPage)
	defer nav.Close()
	if err := nav.Reset(context.Background()); err != nil {
		return err
	}
	ctx.Println("✓ Navigation reset to day 1, page 1")
	return nil
}
