// Package voice provides the speech capture and playback adapters used by
// dialogue sessions.
package voice

import (
	"context"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// UnsupportedInput is used for clients without speech recognition.
type UnsupportedInput struct{}

func (UnsupportedInput) Available() bool { return false }

func (UnsupportedInput) Start(ctx context.Context, lang domain.Language, emit func(domain.VoiceInputEvent)) error {
	return domain.ErrVoiceInputUnsupported
}

// UnsupportedOutput is used for clients without speech synthesis.
type UnsupportedOutput struct{}

func (UnsupportedOutput) Available() bool { return false }

func (UnsupportedOutput) Speak(ctx context.Context, text, locale string, emit func(domain.VoiceOutputEvent)) error {
	return domain.ErrVoiceOutputUnsupported
}

func (UnsupportedOutput) Cancel() error { return nil }
