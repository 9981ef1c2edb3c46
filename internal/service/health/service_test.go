package health

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestService_ReadyWithHealthyDependencies(t *testing.T) {
	// Arrange
	svc := NewService(Config{
		Version:  "1.0.0",
		Cache:    mocks.NewMockCache(),
		Queue:    mocks.NewMockMessageQueue(),
		Sessions: func() int { return 3 },
	}, newTestLogger())
	app := fiber.New()
	NewFiberHandler(svc).RegisterRoutes(app)

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil))

	// Assert
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var out ReadyResponse
	json.Unmarshal(body, &out)
	if !out.Ready || len(out.Checks) != 3 {
		t.Errorf("unexpected response: %+v", out)
	}
	if out.Checks["sessions"].Message != "3 active" {
		t.Errorf("sessions message = %q", out.Checks["sessions"].Message)
	}
}

func TestService_NotReadyWhenCacheDown(t *testing.T) {
	// Arrange
	cache := mocks.NewMockCache()
	cache.PingFunc = func() error { return errors.New("connection refused") }
	svc := NewService(Config{Cache: cache}, newTestLogger())
	app := fiber.New()
	NewFiberHandler(svc).RegisterRoutes(app)

	// Act
	ready, _ := app.Test(httptest.NewRequest("GET", "/readyz", nil))
	live, _ := app.Test(httptest.NewRequest("GET", "/health/live", nil))

	// Assert
	if ready.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", ready.StatusCode)
	}
	if live.StatusCode != fiber.StatusOK {
		t.Errorf("live status = %d, want 200", live.StatusCode)
	}
}
