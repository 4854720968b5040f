package calendar

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/syncer"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		stats := ws.Schedule.Stats()
		bold := color.New(color.Bold)

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("Days"), stats.TotalDays)
		tbl.AddRow(bold.Sprint("Channels"), stats.TotalChannels)
		tbl.AddRow(bold.Sprint("Entries"), stats.TotalEntries)
		tbl.AddRow(bold.Sprint("Completed"), fmt.Sprintf("%d (%d%%)", stats.CompletedEntries, stats.PercentCompleted))
		tbl.RightAlign(0)
		ctx.Println(tbl)
		return nil
	})
}
