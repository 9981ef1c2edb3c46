// Package recorder holds the ports.ConsultationRecorder implementations.
// Every recorder is invoked fire-and-forget by the dialogue session, so
// errors returned here are only logged and counted by the caller.
package recorder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

const (
	DefaultSubject = "consultations.recorded"

	saveRetries    = 3
	saveRetryDelay = 100 * time.Millisecond
)

// RepositoryRecorder writes consultations straight to the repository.
type RepositoryRecorder struct {
	repo ports.ConsultationRepository
	log  *zap.Logger
}

func NewRepositoryRecorder(repo ports.ConsultationRepository, log *zap.Logger) *RepositoryRecorder {
	return &RepositoryRecorder{repo: repo, log: log}
}

func (r *RepositoryRecorder) Record(ctx context.Context, c domain.Consultation) error {
	err := circuitbreaker.RetryWithBackoff(ctx, saveRetries, saveRetryDelay, func() error {
		return r.repo.Save(ctx, &c)
	})
	if err != nil {
		return fmt.Errorf("save consultation %s: %w", c.ID, err)
	}

	r.log.Debug("Consultation saved",
		zap.String("consultation_id", c.ID),
		zap.String("session_id", c.SessionID),
	)
	return nil
}

// LogRecorder only logs the record.
type LogRecorder struct {
	log *zap.Logger
}

func NewLogRecorder(log *zap.Logger) *LogRecorder {
	return &LogRecorder{log: log}
}

func (r *LogRecorder) Record(ctx context.Context, c domain.Consultation) error {
	r.log.Info("Consultation recorded",
		zap.String("consultation_id", c.ID),
		zap.String("session_id", c.SessionID),
		zap.String("suggestion", string(c.SuggestionType)),
		zap.String("confidence", c.ConfidenceScore),
		zap.String("language", string(c.LanguageSelected)),
	)
	return nil
}
