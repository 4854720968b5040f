package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/julianstephens/seasonal/internal/cli"
	"github.com/julianstephens/seasonal/internal/cli/backups"
	"github.com/julianstephens/seasonal/internal/cli/calendar"
	"github.com/julianstephens/seasonal/internal/cli/countdowns"
	"github.com/julianstephens/seasonal/internal/cli/system"
	"github.com/julianstephens/seasonal/internal/config"
	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/errors"
	"github.com/julianstephens/seasonal/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config}"`
	Store   string `help:"Store location, overriding the config file: SQLite path, Postgres URL (no password), file:<dir>, memory or keyring."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init      system.InitCmd          `cmd:"" help:"Initialize storage and seed the schedule grid."`
	Tui       system.TuiCmd           `cmd:"" help:"Launch the interactive calendar." default:"1"`
	Day       calendar.DayCmd         `cmd:"" help:"Show the channels of a day."`
	Toggle    calendar.ToggleCmd      `cmd:"" help:"Toggle completion of an entry, e.g. C1-day5."`
	Stats     calendar.StatsCmd       `cmd:"" help:"Show completion statistics."`
	Nav       calendar.NavCmd         `cmd:"" help:"Show or change the saved calendar position."`
	Suffix    calendar.SuffixCmd      `cmd:"" help:"Manage channel name suffixes."`
	Countdown countdowns.CountdownCmd `cmd:"" help:"Show or restart the countdown timers."`
	Serve     system.ServeCmd         `cmd:"" help:"Serve the calendar over HTTP."`
	Backup    struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the Postgres connection string in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Seasonal channel calendar: 12 seasons, 40 days, 84 channels a day."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"config":  constants.DefaultConfigPath,
		},
	)
	command := strings.Fields(kctx.Command())[0]

	configPath, err := config.ExpandPath(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	configDir := filepath.Dir(configPath)
	config.LoadEnv(configDir)

	cfg, err := config.Load(configPath)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Store != "" {
		cfg.Store = CLI.Store
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Stderr:    command == "serve",
	}); err != nil {
		errors.Fatal(err)
	}

	appCtx, err := cli.NewContext(cfg, configPath)
	if err != nil {
		// The keyring commands are how a missing keyring entry gets fixed.
		if command != "keyring" {
			errors.Fatal(err)
		}
		appCtx = &cli.Context{Config: cfg, ConfigPath: configPath, ConfigDir: configDir, Out: color.Output}
	}

	// Init and doctor open the store themselves.
	if appCtx.Store != nil && command != "init" && command != "doctor" && command != "keyring" {
		if err := appCtx.Store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = kctx.Run(appCtx)
	if appCtx.Store != nil {
		if closeErr := appCtx.Store.Close(); closeErr != nil {
			logger.Warn("Failed to close store", "error", closeErr)
		}
	}
	if err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		errors.Report(os.Stderr, err)
		os.Exit(1)
	}
}
