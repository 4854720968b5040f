package calendar

import (
	"context"
	"errors"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/syncer"
)

type SuffixCmd struct {
	List  SuffixListCmd  `cmd:"" help:"List channel names and suffixes." default:"1"`
	Set   SuffixSetCmd   `cmd:"" help:"Set a channel suffix."`
	Clear SuffixClearCmd `cmd:"" help:"Remove a channel suffix."`
}

type SuffixListCmd struct {
	Filter string `enum:"all,with-suffix,no-suffix" default:"with-suffix" help:"Filter channels by suffix (all, with-suffix, no-suffix)."`
	Search string `short:"s" help:"Only show channels whose name or suffix contains this text."`
	Season int    `help:"Limit to the channels of one season."`
}

func (c *SuffixListCmd) Run(ctx *cli.Context) error {
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		first, last := 0, constants.TotalChannels-1
		if c.Season != 0 {
			if c.Season < 1 || c.Season > constants.TotalSeasons {
				return errors.New("season must be between 1 and 12")
			}
			s := schedule.SeasonByNumber(c.Season)
			first, last = s.StartChannelIndex, s.EndChannelIndex
		}
		indexes := make([]int, 0, last-first+1)
		for i := first; i <= last; i++ {
			indexes = append(indexes, i)
		}

		suffixes := ws.Settings.Suffixes()
		indexes = schedule.FilterChannels(indexes, suffixes, schedule.ChannelFilter(c.Filter), c.Search)
		if len(indexes) == 0 {
			ctx.Println("No channels match.")
			return nil
		}
		sort.Ints(indexes)

		bold := color.New(color.Bold)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("Channel"), bold.Sprint("Season"), bold.Sprint("Display name"))
		for _, idx := range indexes {
			tbl.AddRow(schedule.BaseChannelName(idx), schedule.SeasonOfChannelNumber(idx+1), schedule.ChannelName(idx, suffixes))
		}
		ctx.Println(tbl)
		return nil
	})
}

type SuffixSetCmd struct {
	Channel string `arg:"" help:"Channel, e.g. C97."`
	Suffix  string `arg:"" help:"Suffix appended to the channel name."`
}

func (c *SuffixSetCmd) Run(ctx *cli.Context) error {
	index, err := ParseChannel(c.Channel)
	if err != nil {
		return err
	}
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		if err := ws.Settings.UpdateChannelSuffix(index, c.Suffix); err != nil {
			return err
		}
		ctx.Printf("✓ %s\n", ws.Settings.ChannelName(index))
		return nil
	})
}

type SuffixClearCmd struct {
	Channel string `arg:"" help:"Channel, e.g. C97."`
}

func (c *SuffixClearCmd) Run(ctx *cli.Context) error {
	index, err := ParseChannel(c.Channel)
	if err != nil {
		return err
	}
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		if err := ws.Settings.UpdateChannelSuffix(index, ""); err != nil {
			return err
		}
		ctx.Printf("✓ Cleared suffix of %s\n", schedule.BaseChannelName(index))
		return nil
	})
}
