package ports

import (
	"context"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// Classifier turns free symptom text into a reply. Implementations must
// either return a fully populated result or an error.
type Classifier interface {
	Classify(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error)
}

// ConsultationRecorder stores the outcome of a successful turn. Callers run
// it fire-and-forget.
type ConsultationRecorder interface {
	Record(ctx context.Context, c domain.Consultation) error
}

// VoiceInput captures speech and reports start, result and end events
// through emit. Start returns once capture has been requested.
type VoiceInput interface {
	Available() bool
	Start(ctx context.Context, lang domain.Language, emit func(domain.VoiceInputEvent)) error
}

// VoiceOutput renders text as speech in the given locale.
type VoiceOutput interface {
	Available() bool
	Speak(ctx context.Context, text, locale string, emit func(domain.VoiceOutputEvent)) error
	Cancel() error
}

// Presenter receives every session state change and notification in
// transition order.
type Presenter interface {
	StateChanged(state domain.SessionState)
	Notify(n domain.Notification)
}
