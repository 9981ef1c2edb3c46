package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/observability/telemetry"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

const maxListLimit = 100

type ConsultationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewConsultationRepository(db *gorm.DB, log *zap.Logger) ports.ConsultationRepository {
	return &ConsultationRepository{
		db:  db,
		log: log,
	}
}

// Save inserts the consultation, or updates it when the id already exists.
func (r *ConsultationRepository) Save(ctx context.Context, c *domain.Consultation) error {
	defer observe("save", time.Now())
	return r.db.WithContext(ctx).Save(c).Error
}

// FindByID returns nil without error when no consultation has the id.
func (r *ConsultationRepository) FindByID(ctx context.Context, id string) (*domain.Consultation, error) {
	defer observe("find_by_id", time.Now())

	var c domain.Consultation
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConsultationRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Consultation, error) {
	defer observe("list_by_session", time.Now())

	var out []domain.Consultation
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

func (r *ConsultationRepository) ListRecent(ctx context.Context, limit int) ([]domain.Consultation, error) {
	defer observe("list_recent", time.Now())

	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	var out []domain.Consultation
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func observe(op string, start time.Time) {
	telemetry.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
