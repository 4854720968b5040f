package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/countdown"
	"github.com/julianstephens/seasonal/internal/models"
)

var ErrEmptyPath = errors.New("config path is empty")

// Config is the user configuration kept in config.yaml.
type Config struct {
	// Store selects the backend: a SQLite file path, a postgres:// URL,
	// "file:<dir>", "memory" or "keyring" (Postgres URL from the OS keyring).
	Store string `yaml:"store"`

	// Listen is the HTTP address used by `seasonal serve`.
	Listen string `yaml:"listen"`

	// DebounceWindow delays navigation and settings saves.
	DebounceWindow time.Duration `yaml:"debounce_window"`

	// PollInterval is how often the SQLite backend checks for changes made
	// by other processes.
	PollInterval time.Duration `yaml:"poll_interval"`

	ChannelsPerPage int `yaml:"channels_per_page"`

	// BackupCron schedules automatic backups while serving. Empty disables.
	BackupCron string `yaml:"backup_cron"`

	// Notify sends desktop notifications when a countdown starts a new cycle.
	Notify bool `yaml:"notify"`

	Countdowns []models.Countdown `yaml:"countdowns"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Store:           constants.DefaultStorePath,
		Listen:          constants.DefaultListenAddr,
		DebounceWindow:  constants.DefaultDebounceWindow,
		PollInterval:    constants.DefaultPollInterval,
		ChannelsPerPage: constants.ChannelsPerPage,
		BackupCron:      constants.DefaultBackupCron,
		Countdowns:      countdown.Defaults(),
	}
}

// Normalize fills zero values with defaults so older or hand-edited files
// keep working.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if strings.TrimSpace(c.Store) == "" {
		c.Store = d.Store
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = d.DebounceWindow
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ChannelsPerPage <= 0 || c.ChannelsPerPage > constants.ChannelsPerSeason {
		c.ChannelsPerPage = d.ChannelsPerPage
	}
	if c.Countdowns == nil {
		c.Countdowns = d.Countdowns
	}
}

// Validate reports configuration values that cannot be repaired silently.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, cd := range c.Countdowns {
		if cd.Key == "" {
			return fmt.Errorf("countdown %q has no key", cd.Title)
		}
		if seen[cd.Key] {
			return fmt.Errorf("duplicate countdown key %q", cd.Key)
		}
		seen[cd.Key] = true
		if cd.CycleDays <= 0 {
			return fmt.Errorf("countdown %q must have a positive cycle_days", cd.Key)
		}
	}
	return nil
}

// LoadEnv reads .env and .env.local from dir when present. Variables already
// set in the environment win.
func LoadEnv(dir string) {
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// Load reads the YAML config at path, creating it with defaults (mode 0600)
// on first run, then applies environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("failed to write default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// ApplyEnv overrides the store location from SEASONAL_STORE, and with a
// Postgres URL from SEASONAL_DB_CONNECTION when set.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(constants.EnvStore)); v != "" {
		c.Store = v
	}
	if v := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); v != "" {
		c.Store = v
	}
}

// Save writes cfg atomically with mode 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".seasonal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
