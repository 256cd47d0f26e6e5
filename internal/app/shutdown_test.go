package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/aatumaykin/tubedrop/internal/cleanup"
)

func TestApp_Shutdown_NotStarted(t *testing.T) {
	app := New(createTestConfig(t), createTestLogger(t))

	if err := app.Shutdown(); err != nil {
		t.Errorf("Shutdown() should succeed when not started, got error: %v", err)
	}
	if app.started {
		t.Error("started should be false after shutdown of not started app")
	}
}

func TestApp_Shutdown_Started(t *testing.T) {
	app := New(createTestConfig(t), createTestLogger(t))

	if err := app.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if got := app.Cleanup().State(); got != cleanup.Running {
		t.Fatalf("cleanup state after Start() = %s, want running", got)
	}
	addr := app.Addr()

	if err := app.Shutdown(); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}

	app.mu.Lock()
	started := app.started
	app.mu.Unlock()
	if started {
		t.Error("started should be false after shutdown")
	}

	if got := app.Cleanup().State(); got != cleanup.Stopped {
		t.Errorf("cleanup state after Shutdown() = %s, want stopped", got)
	}

	select {
	case <-app.ctx.Done():
	default:
		t.Error("Shutdown() context should be cancelled")
	}

	if resp, err := http.Get("http://" + addr + "/health"); err == nil {
		resp.Body.Close()
		t.Error("HTTP server still accepting requests after Shutdown()")
	}
}

func TestApp_Shutdown_Twice(t *testing.T) {
	app := New(createTestConfig(t), createTestLogger(t))

	if err := app.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := app.Shutdown(); err != nil {
		t.Errorf("first Shutdown() failed: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		t.Errorf("second Shutdown() failed: %v", err)
	}
}
