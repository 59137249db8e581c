package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/starford/grove/internal/llm"
)

type idleClient struct{}

func (idleClient) CreateMessage(_ context.Context, _ llm.Request) (*llm.Response, error) {
	return &llm.Response{StopReason: llm.StopEndTurn}, nil
}

func testConfig(t *testing.T, port int) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = slog.LevelError
	cfg.App.HTTP.Port = port
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "grove.db")
	cfg.Anthropic.APIKey = "sk-test"
	return cfg
}

func waitForServer(t *testing.T, port int) {
	t.Helper()
	url := fmt.Sprintf("http://127.0.0.1:%d/health/live", port)
	for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server did not start listening")
}

// A shutdown signal must drain the HTTP server and stop the turn worker,
// letting Run return instead of blocking on a worker nothing cancelled.
func TestRunReturnsOnShutdownSignal(t *testing.T) {
	const port = 18293
	cfg := testConfig(t, port)

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), WithConfig(cfg), WithLLMClient(idleClient{}))
	}()

	waitForServer(t, port)

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("send SIGINT: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after shutdown signal")
	}
}

// Cancelling the parent context shuts the whole group down the same way.
func TestRunReturnsOnContextCancel(t *testing.T) {
	const port = 18294
	cfg := testConfig(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg), WithLLMClient(idleClient{}))
	}()

	waitForServer(t, port)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
