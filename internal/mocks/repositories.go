package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// MockConsultationRepository is a mock implementation of ConsultationRepository interface
type MockConsultationRepository struct {
	SaveFunc          func(ctx context.Context, c *domain.Consultation) error
	FindByIDFunc      func(ctx context.Context, id string) (*domain.Consultation, error)
	ListBySessionFunc func(ctx context.Context, sessionID string) ([]domain.Consultation, error)
	ListRecentFunc    func(ctx context.Context, limit int) ([]domain.Consultation, error)

	mu    sync.Mutex
	Saved []domain.Consultation
}

func (m *MockConsultationRepository) Save(ctx context.Context, c *domain.Consultation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, c)
	}
	m.mu.Lock()
	m.Saved = append(m.Saved, *c)
	m.mu.Unlock()
	return nil
}

func (m *MockConsultationRepository) FindByID(ctx context.Context, id string) (*domain.Consultation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockConsultationRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Consultation, error) {
	if m.ListBySessionFunc != nil {
		return m.ListBySessionFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Consultation
	for _, c := range m.Saved {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockConsultationRepository) ListRecent(ctx context.Context, limit int) ([]domain.Consultation, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return []domain.Consultation{}, nil
}

// SavedCount returns how many consultations were saved
func (m *MockConsultationRepository) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}
