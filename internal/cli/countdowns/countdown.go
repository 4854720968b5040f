package countdowns

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/countdown"
)

type CountdownCmd struct {
	Show    CountdownShowCmd    `cmd:"" help:"Show the time left on every countdown." default:"1"`
	Restart CountdownRestartCmd `cmd:"" help:"Start a countdown over from now."`
}

type CountdownShowCmd struct{}

func (c *CountdownShowCmd) Run(ctx *cli.Context) error {
	tracker, err := ctx.CountdownTracker()
	if err != nil {
		return err
	}
	statuses, err := tracker.All(context.Background())
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Countdown"), bold.Sprint("Left"), bold.Sprint("Cycle"), bold.Sprint("Started"), bold.Sprint("Key"))
	for _, s := range statuses {
		tbl.AddRow(s.Countdown.Title, countdown.FormatLeft(s.Left), cycleLabel(s.Countdown.CycleDays), s.Start.Format(constants.DateFormat), s.Countdown.Key)
	}
	ctx.Println(tbl)
	return nil
}

func cycleLabel(days int) string {
	if days == 1 {
		return "every day"
	}
	return fmt.Sprintf("every %d days", days)
}

type CountdownRestartCmd struct {
	Key string `arg:"" help:"Countdown key, as shown by 'seasonal countdown'."`
}

func (c *CountdownRestartCmd) Run(ctx *cli.Context) error {
	tracker, err := ctx.CountdownTracker()
	if err != nil {
		return err
	}
	status, err := tracker.Restart(context.Background(), c.Key)
	if err != nil {
		return err
	}
	ctx.Printf("✓ %s restarted: %s left\n", status.Countdown.Title, countdown.FormatLeft(status.Left))
	return nil
}
