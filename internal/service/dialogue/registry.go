package dialogue

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/observability/telemetry"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

// RegistryConfig holds what every session created by a Registry shares.
type RegistryConfig struct {
	Classifier      ports.Classifier
	Recorder        ports.ConsultationRecorder
	DefaultLanguage domain.Language
	IdleTimeout     time.Duration
	RecordTimeout   time.Duration
}

// Registry keeps the live sessions of the process. Sessions idle for longer
// than IdleTimeout are closed by a janitor goroutine.
type Registry struct {
	cfg      RegistryConfig
	sessions map[string]*Session
	mu       sync.RWMutex
	log      *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once

	listenersMu sync.Mutex
	onRemove    []func(id string)
}

func NewRegistry(cfg RegistryConfig, log *zap.Logger) *Registry {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = domain.LanguageEnglish
	}

	r := &Registry{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		log:      log,
		stopCh:   make(chan struct{}),
	}

	if cfg.IdleTimeout > 0 {
		go r.janitor(cfg.IdleTimeout)
	}

	return r
}

// SessionOptions are the per-client parts of a new session.
type SessionOptions struct {
	Language    domain.Language
	VoiceInput  ports.VoiceInput
	VoiceOutput ports.VoiceOutput
	Presenter   ports.Presenter
}

func (r *Registry) Create(opts SessionOptions) *Session {
	lang := opts.Language
	if lang == "" {
		lang = r.cfg.DefaultLanguage
	}

	s := NewSession(uuid.NewString(), Dependencies{
		Classifier:  r.cfg.Classifier,
		Recorder:    r.cfg.Recorder,
		VoiceInput:  opts.VoiceInput,
		VoiceOutput: opts.VoiceOutput,
		Presenter:   opts.Presenter,
		Logger:      r.log,
	}, WithLanguage(lang), WithRecordTimeout(r.cfg.RecordTimeout))

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	telemetry.ActiveSessions.Inc()
	r.log.Info("Session created", zap.String("session_id", s.ID()), zap.String("language", string(lang)))
	return s
}

// OnRemove registers fn to run after a session is closed and forgotten,
// whether by Remove, the idle janitor or CloseAll.
func (r *Registry) OnRemove(fn func(id string)) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.onRemove = append(r.onRemove, fn)
}

func (r *Registry) notifyRemoved(id string) {
	r.listenersMu.Lock()
	listeners := make([]func(string), len(r.onRemove))
	copy(listeners, r.onRemove)
	r.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Remove closes and forgets the session. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return
	}
	s.Close()
	telemetry.ActiveSessions.Dec()
	r.notifyRemoved(id)
	r.log.Info("Session removed", zap.String("session_id", id))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll stops the janitor and closes every session.
func (r *Registry) CloseAll() {
	r.stopOnce.Do(func() { close(r.stopCh) })

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for id, s := range sessions {
		s.Close()
		telemetry.ActiveSessions.Dec()
		r.notifyRemoved(id)
	}
}

func (r *Registry) janitor(idle time.Duration) {
	interval := idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now().Add(-idle))
		case <-r.stopCh:
			return
		}
	}
}

func (r *Registry) evictIdle(cutoff time.Time) {
	r.mu.RLock()
	var expired []string
	for id, s := range r.sessions {
		if s.LastActivity().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range expired {
		r.Remove(id)
	}

	if len(expired) > 0 {
		r.log.Debug("Idle sessions evicted", zap.Int("count", len(expired)))
	}
}
