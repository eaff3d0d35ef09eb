package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/supersonicwisd1/mandolin/internal/home"
	"github.com/supersonicwisd1/mandolin/internal/providers"
	"github.com/supersonicwisd1/mandolin/internal/server/endpoints"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, port string) *Server {
	t.Helper()

	h, err := home.New(filepath.Join(t.TempDir(), "mandolin-home"))
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}

	srv, err := New(Config{
		Host:   "127.0.0.1",
		Port:   port,
		Home:   h,
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Register mock providers so readiness checks pass
	srv.Registry().RegisterOCR("mock", providers.NewMockOCRProvider())
	srv.Registry().RegisterLLM("mock", providers.NewMockClient())

	return srv
}

func TestServer_FullLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	port := "18090"
	srv := newTestServer(t, port)

	serverErr := make(chan error, 1)
	serverCtx, serverCancel := context.WithCancel(ctx)

	go func() {
		serverErr <- srv.Start(serverCtx)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", port)
	if err := waitForServer(ctx, baseURL, 10*time.Second); err != nil {
		serverCancel()
		t.Fatalf("server did not start: %v", err)
	}

	t.Run("health_endpoint", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/health")
		if err != nil {
			t.Fatalf("health check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var health endpoints.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if health.Status != "ok" {
			t.Errorf("health.Status = %q, want %q", health.Status, "ok")
		}
	})

	t.Run("ready_endpoint", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/ready")
		if err != nil {
			t.Fatalf("ready check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("ready status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var health endpoints.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if health.Providers != "ok" {
			t.Errorf("health.Providers = %q, want %q", health.Providers, "ok")
		}
	})

	t.Run("status_lists_providers", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/status")
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		defer resp.Body.Close()

		var status endpoints.StatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(status.Providers.OCR) != 1 || status.Providers.OCR[0] != "mock" {
			t.Errorf("status.Providers.OCR = %v, want [mock]", status.Providers.OCR)
		}
		if status.OutputDir == "" {
			t.Error("status.OutputDir is empty")
		}
	})

	t.Run("files_empty_listing", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/v1/files")
		if err != nil {
			t.Fatalf("files list failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("files status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var list endpoints.FileListResponse
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(list.Files) != 0 {
			t.Errorf("expected empty listing, got %d files", len(list.Files))
		}
	})

	t.Run("file_download_missing", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/v1/files/nope.pdf")
		if err != nil {
			t.Fatalf("download failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("download status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("process_missing_fields", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/api/v1/process", "multipart/form-data; boundary=x", nil)
		if err != nil {
			t.Fatalf("process failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("process status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("is_running", func(t *testing.T) {
		if !srv.IsRunning() {
			t.Error("IsRunning() = false, want true")
		}
	})

	// Shutdown server
	serverCancel()

	select {
	case err := <-serverErr:
		if err != nil {
			t.Logf("server returned error (expected during shutdown): %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("server did not shut down within timeout")
	}

	t.Run("not_running_after_shutdown", func(t *testing.T) {
		if srv.IsRunning() {
			t.Error("IsRunning() = true after shutdown, want false")
		}
	})
}

func TestServer_DoubleStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	port := "18091"
	srv := newTestServer(t, port)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	go func() {
		_ = srv.Start(serverCtx)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", port)
	if err := waitForServer(ctx, baseURL, 10*time.Second); err != nil {
		t.Fatalf("server did not start: %v", err)
	}

	if err := srv.Start(ctx); err == nil {
		t.Error("second Start() should return error")
	}
}

func TestServer_HomeDirCreatedOnStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	port := "18092"
	srv := newTestServer(t, port)

	serverCtx, serverCancel := context.WithCancel(ctx)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(serverCtx)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", port)
	if err := waitForServer(ctx, baseURL, 10*time.Second); err != nil {
		serverCancel()
		t.Fatalf("server did not start: %v", err)
	}

	for _, dir := range []string{srv.home.OutputPath(), srv.home.UploadsPath()} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("expected %s to exist after Start: %v", dir, err)
		}
	}

	serverCancel()
	select {
	case <-serverErr:
	case <-time.After(30 * time.Second):
		t.Fatal("server did not shut down within timeout")
	}
}

// waitForServer polls the server until it responds or timeout.
func waitForServer(ctx context.Context, baseURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/health", nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %s", timeout)
}
