package calendar

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/schedule"
	"github.com/julianstephens/seasonal/internal/syncer"
)

// DayCmd prints one page of a day. Without arguments it shows the saved
// position.
type DayCmd struct {
	Day    int    `arg:"" optional:"" help:"Day number (1-480). Defaults to the saved day."`
	Page   int    `short:"p" help:"Page number. Defaults to the saved page, or 1 when a day is given."`
	All    bool   `short:"a" help:"Show every channel of the day instead of one page."`
	Filter string `enum:"all,with-suffix,no-suffix" default:"all" help:"Filter channels by suffix (all, with-suffix, no-suffix)."`
	Search string `short:"s" help:"Only show channels whose name or suffix contains this text."`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	return ctx.WithWorkspace(context.Background(), func(ws *syncer.Workspace) error {
		day, page := ws.Navigation.Day(), ws.Navigation.Page()
		if c.Day != 0 {
			day, page = c.Day, 1
		}
		if c.Page != 0 {
			page = c.Page
		}
		if err := schedule.ValidateDay(day); err != nil {
			return err
		}

		perPage := ws.Navigation.PerPage()
		indexes := schedule.ChannelIndexesForDay(day)
		filtering := c.Search != "" || schedule.ChannelFilter(c.Filter) != schedule.FilterAll
		if !c.All && !filtering {
			if err := schedule.ValidatePage(page, perPage); err != nil {
				return err
			}
			indexes = schedule.ChannelIndexesForPage(day, page, perPage)
		}
		indexes = schedule.FilterChannels(indexes, ws.Settings.Suffixes(), schedule.ChannelFilter(c.Filter), c.Search)

		season := schedule.SeasonForDay(day)
		bold := color.New(color.Bold)
		ctx.Println(bold.Sprintf("Day %d", day), "·", schedule.FormatDayDate(day), "·", fmt.Sprintf("Season %d", season.SeasonNumber))
		if !c.All && !filtering {
			ctx.Println(pageStrip(page, schedule.TotalPages(perPage)))
		}
		ctx.Println()

		if len(indexes) == 0 {
			ctx.Println("No channels match.")
			return nil
		}
		ctx.Println(cardTable(ws.Cards(day, indexes)))
		return nil
	})
}

func cardTable(cards []syncer.ChannelCard) *uitable.Table {
	bold := color.New(color.Bold)
	done := color.New(color.FgGreen)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint(" "), bold.Sprint("Entry"), bold.Sprint("Channel"))
	for _, card := range cards {
		mark := "·"
		if card.Entry.Completed {
			mark = done.Sprint("✓")
		}
		tbl.AddRow(mark, card.Entry.ID, card.Name)
	}
	return tbl
}

// pageStrip renders "Page 2/7  1 [2] 3 4 5 … 7".
func pageStrip(current, total int) string {
	out := fmt.Sprintf("Page %d/%d ", current, total)
	for _, p := range schedule.PageNumbers(current, total) {
		switch {
		case p == schedule.Ellipsis:
			out += " …"
		case p == current:
			out += fmt.Sprintf(" [%d]", p)
		default:
			out += fmt.Sprintf(" %d", p)
		}
	}
	return out
}
