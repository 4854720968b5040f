package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	// Back up before the session starts changing state.
	ctx.PerformAutomaticBackup(bg)

	ws, err := ctx.OpenWorkspace(bg, true)
	if err != nil {
		return err
	}
	tracker, err := ctx.CountdownTracker()
	if err != nil {
		logger.Warn("Countdowns unavailable", "error", err)
		tracker = nil
	}

	runErr := tui.Run(ws, tracker)
	if err := ws.Close(bg); err != nil {
		return fmt.Errorf("failed to save changes: %w", err)
	}
	return runErr
}
