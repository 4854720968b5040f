package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	TEST_SERVER_TIMEOUT = 30 * time.Second
)

func TestEndToEndWorkflow(t *testing.T) {
	// 1. Setup Environment
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("SEASONAL_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "seasonal")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Build it with 'go build -o bin/seasonal ./cmd/seasonal'.", cliPath)
	}
	t.Logf("Using CLI: %s", cliPath)

	// Create temp home for isolation
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "seasonal", "config.yaml")
	dbPath := filepath.Join(tempDir, "seasonal", "seasonal.db")

	var cleanEnv []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "SEASONAL_") {
			cleanEnv = append(cleanEnv, e)
		}
	}
	cleanEnv = append(cleanEnv, fmt.Sprintf("HOME=%s", tempDir))
	cleanEnv = append(cleanEnv, fmt.Sprintf("SEASONAL_STORE=%s", dbPath))

	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, cleanEnv, append([]string{"--config", configPath}, args...)...)
	}

	// 2. Initialize and seed
	if out := run("init"); !strings.Contains(out, "40320") {
		t.Fatalf("init output missing grid size:\n%s", out)
	}

	// 3. Toggle with cascade
	if out := run("toggle", "C1-day3"); !strings.Contains(out, "2 earlier day(s)") {
		t.Errorf("toggle output:\n%s", out)
	}
	if out := run("stats"); !strings.Contains(out, "3 (0%)") {
		t.Errorf("stats output:\n%s", out)
	}

	// 4. Navigation and suffixes persist across processes
	run("nav", "set", "41", "2")
	run("suffix", "set", "C97", "Lo-fi")
	if out := run("day"); !strings.Contains(out, "C97 - Lo-fi") {
		t.Errorf("day output does not show the saved page:\n%s", out)
	}

	// 5. Serve and read the same state over HTTP
	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveCmd := exec.CommandContext(ctx, cliPath, "--config", configPath, "serve", "--listen", addr, "--no-backups")
	serveCmd.Env = cleanEnv
	if err := serveCmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer func() {
		cancel()
		_ = serveCmd.Wait()
	}()

	base := "http://" + addr + "/api/v1"
	waitForURL(t, base+"/health", TEST_SERVER_TIMEOUT)

	resp, err := http.Get(base + "/navigation")
	if err != nil {
		t.Fatalf("GET navigation: %v", err)
	}
	var nav struct {
		CurrentDay  int `json:"currentDay"`
		CurrentPage int `json:"currentPage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&nav); err != nil {
		t.Fatalf("decode navigation: %v", err)
	}
	resp.Body.Close()
	if nav.CurrentDay != 41 || nav.CurrentPage != 2 {
		t.Errorf("navigation = %+v, want day 41 page 2", nav)
	}

	// 6. Administrative reset
	run("nav", "reset")
	if out := run("nav"); !strings.Contains(out, "Day 1") {
		t.Errorf("nav after reset:\n%s", out)
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().String()
}

func waitForURL(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	start := time.Now()
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Since(start) > timeout {
			t.Fatalf("Timed out waiting for %s", url)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
