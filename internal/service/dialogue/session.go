package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/i18n"
	"github.com/seu-repo/symptom-assistant/internal/observability/telemetry"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

const defaultRecordTimeout = 5 * time.Second

// Dependencies are the collaborators a Session orchestrates. Recorder,
// VoiceInput, VoiceOutput and Presenter may be nil.
type Dependencies struct {
	Classifier  ports.Classifier
	Recorder    ports.ConsultationRecorder
	VoiceInput  ports.VoiceInput
	VoiceOutput ports.VoiceOutput
	Presenter   ports.Presenter
	Logger      *zap.Logger
}

type Option func(*Session)

func WithLanguage(lang domain.Language) Option {
	return func(s *Session) { s.lang = lang }
}

// WithRecordTimeout bounds each fire-and-forget persistence call.
func WithRecordTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.recordTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session owns the conversation state of one client and coordinates the
// classifier, the persistence collaborator and both voice adapters.
//
// State transitions happen under mu. Presenter callbacks run after mu is
// released but while deliverMu is held, so they observe transitions in the
// order they were applied. Presenters must not call back into the session
// synchronously.
type Session struct {
	id            string
	classifier    ports.Classifier
	recorder      ports.ConsultationRecorder
	voiceIn       ports.VoiceInput
	voiceOut      ports.VoiceOutput
	presenter     ports.Presenter
	log           *zap.Logger
	now           func() time.Time
	recordTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	deliverMu sync.Mutex

	mu           sync.Mutex
	messages     []domain.Message
	draft        string
	pending      bool
	listening    bool
	speaking     bool
	lang         domain.Language
	listenSeq    uint64
	speakSeq     uint64
	settled      chan struct{}
	closed       bool
	lastActivity time.Time
}

func NewSession(id string, deps Dependencies, opts ...Option) *Session {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{
		id:            id,
		classifier:    deps.Classifier,
		recorder:      deps.Recorder,
		voiceIn:       deps.VoiceInput,
		voiceOut:      deps.VoiceOutput,
		presenter:     deps.Presenter,
		now:           time.Now,
		recordTimeout: defaultRecordTimeout,
		lang:          domain.LanguageEnglish,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log = log.With(zap.String("session_id", id))
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.lastActivity = s.now()

	return s
}

func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the current session state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastActivity reports when the session last accepted a user action or
// voice event.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Touch marks the session as in use without changing its state.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = s.now()
	s.mu.Unlock()
}

func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.draft = text
	s.lastActivity = s.now()
	s.commit(true)
	return nil
}

func (s *Session) SetLanguage(lang domain.Language) error {
	if !isSupported(lang) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.lang = lang
	s.lastActivity = s.now()
	s.commit(true)
	return nil
}

// SubmitDraft submits the current draft input.
func (s *Session) SubmitDraft(ctx context.Context) error {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()
	return s.Submit(ctx, draft)
}

// Submit appends the user message and starts classification in the
// background. It only returns an error when the submission is rejected;
// the outcome of the classification is reported through the presenter.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrEmptyInput
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.pending {
		telemetry.TurnsTotal.WithLabelValues(telemetry.OutcomeRejected).Inc()
		s.commit(false, i18n.Notification(s.lang, domain.NotificationWarning, domain.CodeRequestPending))
		return domain.ErrRequestPending
	}

	s.messages = append(s.messages, domain.Message{
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: s.now(),
	})
	s.pending = true
	s.lastActivity = s.now()
	s.settled = make(chan struct{})
	lang := s.lang
	settled := s.settled

	// Classification outlives the caller's request; only the trace is carried over.
	runCtx := trace.ContextWithSpanContext(s.ctx, trace.SpanContextFromContext(ctx))

	telemetry.TurnsTotal.WithLabelValues(telemetry.OutcomeAccepted).Inc()
	s.commit(true)

	go s.resolve(runCtx, text, lang, settled)
	return nil
}

func (s *Session) resolve(ctx context.Context, text string, lang domain.Language, settled chan struct{}) {
	defer close(settled)

	result, err := s.classify(ctx, text, lang)

	s.mu.Lock()
	s.pending = false
	if s.closed {
		s.mu.Unlock()
		return
	}

	if err != nil {
		s.log.Error("Classification failed",
			zap.String("language", string(lang)),
			zap.Error(&domain.ClassificationError{SessionID: s.id, Err: err}),
		)
		telemetry.TurnsTotal.WithLabelValues(telemetry.OutcomeFailure).Inc()
		s.commit(true, i18n.Notification(lang, domain.NotificationError, domain.CodeClassificationFailed))
		return
	}

	now := s.now()
	s.messages = append(s.messages, domain.Message{
		Role:       domain.RoleAssistant,
		Content:    result.Reply,
		Confidence: result.Confidence,
		Suggestion: result.Suggestion,
		CreatedAt:  now,
	})
	s.draft = ""

	consultation := domain.Consultation{
		ID:               uuid.NewString(),
		SessionID:        s.id,
		SymptomInput:     text,
		AIResponse:       result.Reply,
		ConfidenceScore:  result.Confidence,
		SuggestionType:   result.Suggestion,
		LanguageSelected: lang,
		CreatedAt:        now,
	}

	telemetry.TurnsTotal.WithLabelValues(telemetry.OutcomeSuccess).Inc()
	s.commit(true)

	go s.record(consultation)
}

// classify calls the classifier and converts panics and partial results
// into errors.
func (s *Session) classify(ctx context.Context, text string, lang domain.Language) (result domain.ClassificationResult, err error) {
	if s.classifier == nil {
		return result, errors.New("no classifier configured")
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()

	result, err = s.classifier.Classify(ctx, text, lang)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	if err := result.Validate(); err != nil {
		return domain.ClassificationResult{}, err
	}
	return result, nil
}

func (s *Session) record(c domain.Consultation) {
	if s.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.recordTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			telemetry.PersistenceFailuresTotal.Inc()
			s.log.Warn("Consultation recorder panicked", zap.Any("panic", r))
		}
	}()

	if err := s.recorder.Record(ctx, c); err != nil {
		telemetry.PersistenceFailuresTotal.Inc()
		s.log.Warn("Failed to record consultation",
			zap.String("consultation_id", c.ID),
			zap.Error(err),
		)
	}
}

// Wait blocks until no classification is in flight.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	ch := s.settled
	s.mu.Unlock()

	if ch == nil {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartVoiceCapture begins speech capture. The transcript replaces the
// draft input; it is never submitted automatically. Capturing while a reply
// is being read aloud stops the playback first.
func (s *Session) StartVoiceCapture(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.voiceIn == nil || !s.voiceIn.Available() {
		s.commit(false, i18n.Notification(s.lang, domain.NotificationWarning, domain.CodeVoiceInputUnsupported))
		return domain.ErrVoiceInputUnsupported
	}
	if s.listening {
		s.mu.Unlock()
		return domain.ErrVoiceBusy
	}

	interrupted := s.speaking
	if interrupted {
		s.speaking = false
		s.speakSeq++
	}
	s.listening = true
	s.listenSeq++
	seq := s.listenSeq
	lang := s.lang
	s.lastActivity = s.now()
	s.commit(true)

	if interrupted {
		s.cancelOutput()
	}

	emit := func(ev domain.VoiceInputEvent) {
		s.handleVoiceInput(seq, ev)
	}
	if err := s.voiceIn.Start(ctx, lang, emit); err != nil {
		s.log.Warn("Voice capture failed to start", zap.Error(err))
		s.handleVoiceInput(seq, domain.VoiceInputEvent{Kind: domain.VoiceInputEnd})
		return fmt.Errorf("start voice capture: %w", err)
	}
	return nil
}

func (s *Session) handleVoiceInput(seq uint64, ev domain.VoiceInputEvent) {
	if !ev.Kind.Valid() {
		s.log.Debug("Unknown voice input event dropped", zap.String("kind", string(ev.Kind)))
		return
	}
	telemetry.VoiceEventsTotal.WithLabelValues("input", string(ev.Kind)).Inc()

	s.mu.Lock()
	if s.closed || seq != s.listenSeq || !s.listening {
		s.mu.Unlock()
		return
	}

	switch ev.Kind {
	case domain.VoiceInputResult:
		s.draft = ev.Transcript
	case domain.VoiceInputEnd:
		s.listening = false
	default:
		s.mu.Unlock()
		return
	}
	s.lastActivity = s.now()
	s.commit(true)
}

// Speak reads content aloud in the locale of the active language. Only one
// utterance plays at a time; further requests are rejected.
func (s *Session) Speak(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.ErrEmptyInput
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.voiceOut == nil || !s.voiceOut.Available() {
		s.commit(false, i18n.Notification(s.lang, domain.NotificationWarning, domain.CodeVoiceOutputUnsupported))
		return domain.ErrVoiceOutputUnsupported
	}
	if s.speaking {
		s.commit(false, i18n.Notification(s.lang, domain.NotificationWarning, domain.CodeSpeechInProgress))
		return domain.ErrSpeechInProgress
	}
	if s.listening {
		s.commit(false, i18n.Notification(s.lang, domain.NotificationWarning, domain.CodeVoiceBusy))
		return domain.ErrVoiceBusy
	}

	s.speaking = true
	s.speakSeq++
	seq := s.speakSeq
	locale := i18n.VoiceLocale(s.lang)
	s.lastActivity = s.now()
	s.commit(true)

	emit := func(ev domain.VoiceOutputEvent) {
		s.handleVoiceOutput(seq, ev)
	}
	if err := s.voiceOut.Speak(ctx, content, locale, emit); err != nil {
		s.log.Warn("Voice output failed to start", zap.Error(err))
		s.handleVoiceOutput(seq, domain.VoiceOutputEvent{Kind: domain.VoiceOutputEnd})
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

func (s *Session) handleVoiceOutput(seq uint64, ev domain.VoiceOutputEvent) {
	if !ev.Kind.Valid() {
		s.log.Debug("Unknown voice output event dropped", zap.String("kind", string(ev.Kind)))
		return
	}
	telemetry.VoiceEventsTotal.WithLabelValues("output", string(ev.Kind)).Inc()

	s.mu.Lock()
	if s.closed || seq != s.speakSeq || !s.speaking || ev.Kind != domain.VoiceOutputEnd {
		s.mu.Unlock()
		return
	}
	s.speaking = false
	s.commit(true)
}

// StopSpeaking cancels playback and clears the speaking flag without
// waiting for the adapter to confirm. It is a no-op when nothing plays.
func (s *Session) StopSpeaking() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}

	wasSpeaking := s.speaking
	s.speaking = false
	s.speakSeq++
	s.lastActivity = s.now()
	if !wasSpeaking {
		s.mu.Unlock()
		return nil
	}
	s.commit(true)

	s.cancelOutput()
	return nil
}

func (s *Session) cancelOutput() {
	if s.voiceOut == nil || !s.voiceOut.Available() {
		return
	}
	if err := s.voiceOut.Cancel(); err != nil {
		s.log.Warn("Voice output cancel failed", zap.Error(err))
	}
}

// Close ends the session. In-flight classification results are dropped and
// playback is cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wasSpeaking := s.speaking
	s.speaking = false
	s.listening = false
	s.mu.Unlock()

	s.cancel()
	if wasSpeaking {
		s.cancelOutput()
	}
	s.log.Debug("Session closed")
}

// commit must be called with s.mu held and releases it. It delivers the
// new snapshot (when state is true) and the notifications to the presenter.
func (s *Session) commit(state bool, notes ...domain.Notification) {
	var snap domain.SessionState
	if state {
		snap = s.snapshotLocked()
	}

	s.deliverMu.Lock()
	s.mu.Unlock()
	defer s.deliverMu.Unlock()

	if s.presenter == nil {
		return
	}
	if state {
		s.presenter.StateChanged(snap)
	}
	for _, n := range notes {
		s.presenter.Notify(n)
	}
}

func (s *Session) snapshotLocked() domain.SessionState {
	msgs := make([]domain.Message, len(s.messages))
	copy(msgs, s.messages)
	return domain.SessionState{
		ID:               s.id,
		Messages:         msgs,
		DraftInput:       s.draft,
		IsRequestPending: s.pending,
		IsListening:      s.listening,
		IsSpeaking:       s.speaking,
		Language:         s.lang,
	}
}

func isSupported(lang domain.Language) bool {
	for _, l := range i18n.Supported() {
		if l == lang {
			return true
		}
	}
	return false
}
