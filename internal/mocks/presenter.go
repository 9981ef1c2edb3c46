package mocks

import (
	"sync"
	"time"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// RecordingPresenter stores every state snapshot and notification it
// receives.
type RecordingPresenter struct {
	mu            sync.Mutex
	states        []domain.SessionState
	notifications []domain.Notification
}

func NewRecordingPresenter() *RecordingPresenter {
	return &RecordingPresenter{}
}

func (p *RecordingPresenter) StateChanged(state domain.SessionState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

func (p *RecordingPresenter) Notify(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
}

func (p *RecordingPresenter) States() []domain.SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.SessionState, len(p.states))
	copy(out, p.states)
	return out
}

func (p *RecordingPresenter) Notifications() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}

// WaitForState polls until a received snapshot satisfies match.
func (p *RecordingPresenter) WaitForState(match func(domain.SessionState) bool, timeout time.Duration) (domain.SessionState, bool) {
	deadline := time.Now().Add(timeout)
	for {
		for _, s := range p.States() {
			if match(s) {
				return s, true
			}
		}
		if time.Now().After(deadline) {
			return domain.SessionState{}, false
		}
		time.Sleep(5 * time.Millisecond)
	}
}
