package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// MockClassifier is a mock implementation of the Classifier interface
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockClassifier) Classify(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text, lang)
	}
	return domain.ClassificationResult{
		Reply:      "mock reply",
		Confidence: "50%",
		Suggestion: domain.SuggestionDoctor,
	}, nil
}

// Calls returns the texts passed to Classify
func (m *MockClassifier) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockRecorder is a mock implementation of the ConsultationRecorder interface
type MockRecorder struct {
	RecordFunc func(ctx context.Context, c domain.Consultation) error
	Recorded   chan domain.Consultation
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{Recorded: make(chan domain.Consultation, 16)}
}

func (m *MockRecorder) Record(ctx context.Context, c domain.Consultation) error {
	var err error
	if m.RecordFunc != nil {
		err = m.RecordFunc(ctx, c)
	}
	if m.Recorded != nil {
		m.Recorded <- c
	}
	return err
}

// MockVoiceInput is a mock implementation of the VoiceInput interface. It
// keeps the emit callback of the latest Start so tests can drive events.
type MockVoiceInput struct {
	Unavailable bool
	StartFunc   func(ctx context.Context, lang domain.Language) error

	mu     sync.Mutex
	starts int
	emit   func(domain.VoiceInputEvent)
}

func (m *MockVoiceInput) Available() bool {
	return !m.Unavailable
}

func (m *MockVoiceInput) Start(ctx context.Context, lang domain.Language, emit func(domain.VoiceInputEvent)) error {
	m.mu.Lock()
	m.starts++
	m.emit = emit
	m.mu.Unlock()

	if m.StartFunc != nil {
		return m.StartFunc(ctx, lang)
	}
	return nil
}

func (m *MockVoiceInput) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Emit delivers ev through the callback of the latest Start.
func (m *MockVoiceInput) Emit(ev domain.VoiceInputEvent) {
	m.mu.Lock()
	emit := m.emit
	m.mu.Unlock()
	if emit != nil {
		emit(ev)
	}
}

// SpeakCall captures one Speak invocation
type SpeakCall struct {
	Text   string
	Locale string
	Emit   func(domain.VoiceOutputEvent)
}

// MockVoiceOutput is a mock implementation of the VoiceOutput interface
type MockVoiceOutput struct {
	Unavailable bool
	SpeakFunc   func(ctx context.Context, text, locale string) error
	CancelFunc  func() error

	mu      sync.Mutex
	calls   []SpeakCall
	cancels int
}

func (m *MockVoiceOutput) Available() bool {
	return !m.Unavailable
}

func (m *MockVoiceOutput) Speak(ctx context.Context, text, locale string, emit func(domain.VoiceOutputEvent)) error {
	m.mu.Lock()
	m.calls = append(m.calls, SpeakCall{Text: text, Locale: locale, Emit: emit})
	m.mu.Unlock()

	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text, locale)
	}
	return nil
}

func (m *MockVoiceOutput) Cancel() error {
	m.mu.Lock()
	m.cancels++
	m.mu.Unlock()

	if m.CancelFunc != nil {
		return m.CancelFunc()
	}
	return nil
}

func (m *MockVoiceOutput) Calls() []SpeakCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SpeakCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockVoiceOutput) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}
