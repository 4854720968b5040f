package calendar

import (
	"context"
	"fmt"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/syncer"
)

// ToggleCmd flips one entry. Completing an entry also completes the earlier
// pending days of its channel.
type ToggleCmd struct {
	Entry string `arg:"" help:"Entry id, e.g. C97-day41."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	if _, _, err := schedule.ParseEntryID(c.Entry); err != nil {
		return err
	}
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		if _, ok := ws.Schedule.Entry(c.Entry); !ok {
			return fmt.Errorf("entry %s is not on the schedule", c.Entry)
		}
		res, err := ws.Schedule.Toggle(context.Background(), c.Entry)
		if err != nil {
			return err
		}
		if !res.Completed {
			ctx.Printf("○ %s marked pending\n", res.EntryID)
			return nil
		}
		ctx.Printf("✓ %s completed\n", res.EntryID)
		if extra := len(res.Updated) - 1; extra > 0 {
			ctx.Printf("  also completed %d earlier day(s) of %s\n", extra, ws.Settings.ChannelName(channelIndex(res.EntryID)))
		}
		return nil
	})
}

func channelIndex(entryID string) int {
	n, _, err := schedule.ParseEntryID(entryID)
	if err != nil {
		return 0
	}
	return n - 1
}
