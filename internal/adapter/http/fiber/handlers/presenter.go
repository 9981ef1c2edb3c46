package handlers

import (
	"sync"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

const maxPendingNotifications = 32

// mailbox is the presenter of a REST session. It keeps notifications until
// the client fetches them with the next response.
type mailbox struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (m *mailbox) StateChanged(domain.SessionState) {}

func (m *mailbox) Notify(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notes) == maxPendingNotifications {
		m.notes = m.notes[1:]
	}
	m.notes = append(m.notes, n)
}

func (m *mailbox) drain() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.notes
	m.notes = nil
	if out == nil {
		out = []domain.Notification{}
	}
	return out
}
