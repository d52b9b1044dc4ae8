package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/commerce/internal/health"
	"github.com/vladislavdragonenkov/commerce/internal/version"
)

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")

	port := findFreePort(t)
	addr := fmt.Sprintf(":%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := startMetricsServer(ctx, addr, logger, healthcheck.NewHandler(version.GetVersion()))
	if srv == nil {
		t.Fatal("startMetricsServer should not return nil")
	}
	waitForServer(t, port)

	for _, path := range []string{"/metrics", "/healthz", "/readyz", "/livez"} {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d%s", port, path))
		if err != nil {
			t.Fatalf("failed to get %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s returned status %d, expected 200", path, resp.StatusCode)
		}
		if len(body) == 0 {
			t.Errorf("%s should return non-empty response", path)
		}
		if path == "/livez" && string(body) != "ok" {
			t.Errorf("expected 'ok' from /livez, got '%s'", string(body))
		}
	}
}

func TestStartMetricsServer_ReadyzReportsUnhealthyStorage(t *testing.T) {
	logger := log.WithField("test", "http-readyz")

	port := findFreePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := healthcheck.NewHandler(version.GetVersion())
	handler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func(context.Context) error {
		return errors.New("connection refused")
	}))
	startMetricsServer(ctx, fmt.Sprintf(":%d", port), logger, handler)
	waitForServer(t, port)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/readyz", port))
	if err != nil {
		t.Fatalf("failed to get /readyz: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 for /readyz, got %d", resp.StatusCode)
	}
}

func TestStartMetricsServer_Shutdown(t *testing.T) {
	logger := log.WithField("test", "http-shutdown")

	port := findFreePort(t)
	ctx, cancel := context.WithCancel(context.Background())

	startMetricsServer(ctx, fmt.Sprintf(":%d", port), logger, healthcheck.NewHandler(version.GetVersion()))
	waitForServer(t, port)

	cancel()
	time.Sleep(200 * time.Millisecond)

	if _, err := http.Get(fmt.Sprintf("http://localhost:%d/livez", port)); err == nil {
		t.Error("server should be stopped after context cancellation")
	}
}

func TestShutdownHTTP_NilServer(_ *testing.T) {
	shutdownHTTP(nil, log.WithField("test", "http-nil"))
}

func TestShutdownOutboxWorker(t *testing.T) {
	logger := log.WithField("test", "shutdown")

	cancelCalled := false
	done := make(chan struct{})
	close(done)
	shutdownOutboxWorker(func() { cancelCalled = true }, done, logger)
	if !cancelCalled {
		t.Fatal("expected outbox cancel func to be called")
	}

	shutdownOutboxWorker(nil, nil, logger)
}

func TestLogPublisher_AlwaysSucceeds(t *testing.T) {
	publisher := logPublisher{logger: log.WithField("test", "log-publisher")}

	err := publisher.Publish(context.Background(), domain.OutboxMessage{ID: "1", EventType: "address.saved"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

// findFreePort находит свободный порт для тестов
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func waitForServer(t *testing.T, port int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server on port %d did not start", port)
}
