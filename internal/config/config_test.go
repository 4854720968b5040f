package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	t.Setenv(constants.EnvStore, "")
	t.Setenv(constants.EnvDBConnection, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
	if cfg.Store != constants.DefaultStorePath || cfg.Listen != constants.DefaultListenAddr {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.Countdowns) != 2 {
		t.Errorf("len(Countdowns) = %d, want 2", len(cfg.Countdowns))
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if again.DebounceWindow != constants.DefaultDebounceWindow {
		t.Errorf("DebounceWindow = %v after round trip", again.DebounceWindow)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	t.Setenv(constants.EnvStore, "")
	t.Setenv(constants.EnvDBConnection, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "store: memory\ndebounce_window: 250ms\nchannels_per_page: 500\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store != "memory" {
		t.Errorf("Store = %q, want memory", cfg.Store)
	}
	if cfg.DebounceWindow != 250*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 250ms", cfg.DebounceWindow)
	}
	if cfg.ChannelsPerPage != constants.ChannelsPerPage {
		t.Errorf("ChannelsPerPage = %d, want default", cfg.ChannelsPerPage)
	}
	if cfg.PollInterval != constants.DefaultPollInterval {
		t.Errorf("PollInterval = %v, want default", cfg.PollInterval)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	t.Setenv(constants.EnvStore, "file:/tmp/seasonal-docs")
	t.Setenv(constants.EnvDBConnection, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store != "file:/tmp/seasonal-docs" {
		t.Errorf("Store = %q, want SEASONAL_STORE value", cfg.Store)
	}

	t.Setenv(constants.EnvDBConnection, "postgres://seasonal@db:5432/seasonal")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !strings.HasPrefix(cfg.Store, "postgres://") {
		t.Errorf("Store = %q, want SEASONAL_DB_CONNECTION value", cfg.Store)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(constants.EnvStore, "")
	os.Unsetenv(constants.EnvStore)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(constants.EnvStore+"=memory\n"), 0600); err != nil {
		t.Fatal(err)
	}

	LoadEnv(dir)
	if got := os.Getenv(constants.EnvStore); got != "memory" {
		t.Errorf("%s = %q after LoadEnv, want memory", constants.EnvStore, got)
	}
}

func TestValidateRejectsBadCountdowns(t *testing.T) {
	t.Setenv(constants.EnvStore, "")
	t.Setenv(constants.EnvDBConnection, "")
	tests := map[string]string{
		"zero cycle": "countdowns:\n  - key: a\n    title: A\n    cycle_days: 0\n",
		"duplicate":  "countdowns:\n  - key: a\n    cycle_days: 2\n  - key: a\n    cycle_days: 3\n",
		"no key":     "countdowns:\n  - title: A\n    cycle_days: 2\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted an invalid countdown")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/.config/seasonal")
	if err != nil {
		t.Fatalf("ExpandPath() error: %v", err)
	}
	if want := filepath.Join(home, ".config/seasonal"); got != want {
		t.Errorf("ExpandPath() = %q, want %q", got, want)
	}
	if got, _ := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q", got)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err != ErrEmptyPath {
		t.Errorf("Load(\"\") error = %v, want ErrEmptyPath", err)
	}
}
