package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/ports"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestLocalCache_SetGet(t *testing.T) {
	// Arrange
	c := NewLocalCache(time.Minute, 0, newTestLogger())
	defer c.Close()
	ctx := context.Background()

	// Act
	c.Set(ctx, "text", "hello", 0)
	c.Set(ctx, "bytes", []byte("world"), 0)
	c.Set(ctx, "json", map[string]int{"a": 1}, 0)

	// Assert
	tests := map[string]string{"text": "hello", "bytes": "world", "json": `{"a":1}`}
	for key, want := range tests {
		got, err := c.Get(ctx, key)
		if err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestLocalCache_MissAndExpiry(t *testing.T) {
	// Arrange
	c := NewLocalCache(time.Minute, 0, newTestLogger())
	defer c.Close()
	ctx := context.Background()
	c.Set(ctx, "short", "v", 10*time.Millisecond)

	// Act
	time.Sleep(20 * time.Millisecond)
	_, expiredErr := c.Get(ctx, "short")
	_, missingErr := c.Get(ctx, "missing")

	// Assert
	if !errors.Is(expiredErr, ports.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss for expired key, got %v", expiredErr)
	}
	if !errors.Is(missingErr, ports.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss for missing key, got %v", missingErr)
	}

	c.cleanup()
	if c.Len() != 0 {
		t.Errorf("cleanup left %d entries", c.Len())
	}
}

func TestLocalCache_BoundedSize(t *testing.T) {
	// Arrange
	c := NewLocalCache(time.Minute, 2, newTestLogger())
	defer c.Close()
	ctx := context.Background()

	// Act
	c.Set(ctx, "a", "1", 0)
	c.Set(ctx, "b", "2", 0)
	c.Set(ctx, "c", "3", 0)
	c.Set(ctx, "c", "4", 0)

	// Assert
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got, _ := c.Get(ctx, "c"); got != "4" {
		t.Errorf("Get(c) = %q, want 4", got)
	}
}

func TestLocalCache_DeleteAndClose(t *testing.T) {
	c := NewLocalCache(time.Minute, 0, newTestLogger())
	ctx := context.Background()
	c.Set(ctx, "k", "v", 0)

	c.Delete(ctx, "k")
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected miss after delete, got %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
