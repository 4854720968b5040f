package system

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/seasonal/internal/cli/clitest"
)

func TestServeHandlesRequestsUntilCancelled(t *testing.T) {
	ctx := clitest.New(t)
	ctx.Config.BackupCron = "@every 1h"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	addr := ln.Addr().String()

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- (&ServeCmd{}).serve(runCtx, ctx, ln) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + addr + "/api/v1/stats")
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	var stats map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	resp.Body.Close()
	if stats["totalEntries"] != 40320 {
		t.Errorf("totalEntries = %d", stats["totalEntries"])
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not stop after cancel")
	}
	if out := clitest.Output(ctx); !strings.Contains(out, "Listening on http://"+addr) {
		t.Errorf("output = %q", out)
	}
}

func TestServeRejectsBadBackupCron(t *testing.T) {
	ctx := clitest.New(t)
	ctx.Config.BackupCron = "not a schedule"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	err = (&ServeCmd{}).serve(context.Background(), ctx, ln)
	if err == nil || !strings.Contains(err.Error(), "invalid backup_cron") {
		t.Fatalf("serve() error = %v, want invalid backup_cron", err)
	}
}
