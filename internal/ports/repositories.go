package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

type ConsultationRepository interface {
	Save(ctx context.Context, c *domain.Consultation) error
	FindByID(ctx context.Context, id string) (*domain.Consultation, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Consultation, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Consultation, error)
}

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
