package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/seasonal/internal/api"
	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Listen    string `help:"Address to listen on. Defaults to the configured listen address."`
	NoBackups bool   `help:"Disable scheduled backups while serving."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Listen
	if addr == "" {
		addr = ctx.Config.Listen
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.serve(sigCtx, ctx, ln)
}

// serve blocks until ctx is done or the server fails, then shuts down and
// flushes pending writes.
func (c *ServeCmd) serve(ctx context.Context, cctx *cli.Context, ln net.Listener) error {
	ws, err := cctx.OpenWorkspace(ctx, true)
	if err != nil {
		ln.Close()
		return err
	}
	tracker, err := cctx.CountdownTracker()
	if err != nil {
		ln.Close()
		ws.Close(context.Background())
		return err
	}

	if !c.NoBackups && cctx.Config.BackupCron != "" {
		scheduler, err := c.scheduleBackups(cctx)
		if err != nil {
			ln.Close()
			ws.Close(context.Background())
			return err
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	srv := api.NewServer(ws, tracker)
	httpServer := &http.Server{
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()
	logger.Info("Serving", "addr", ln.Addr().String(), "store", cctx.Store.GetConfigPath())
	cctx.Printf("Listening on http://%s\n", ln.Addr())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Event streams only end when the broker closes them.
	srv.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown did not complete", "error", err)
	}
	if err := ws.Close(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("failed to save changes: %w", err))
	}
	logger.Info("Server stopped")
	return serveErr
}

func (c *ServeCmd) scheduleBackups(cctx *cli.Context) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(cctx.Config.BackupCron, func() {
		cctx.PerformAutomaticBackup(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup_cron %q: %w", cctx.Config.BackupCron, err)
	}
	scheduler.Start()
	logger.Info("Scheduled backups", "cron", cctx.Config.BackupCron)
	return scheduler, nil
}
