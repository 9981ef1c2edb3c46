package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput             = errors.New("input is empty")
	ErrRequestPending         = errors.New("a request is already pending")
	ErrSpeechInProgress       = errors.New("speech output already in progress")
	ErrVoiceBusy              = errors.New("voice capture in progress")
	ErrVoiceInputUnsupported  = errors.New("voice input is not supported")
	ErrVoiceOutputUnsupported = errors.New("voice output is not supported")
	ErrSessionClosed          = errors.New("session is closed")
	ErrSessionNotFound        = errors.New("session not found")
	ErrPartialResult          = errors.New("classification result is incomplete")
	ErrUnsupportedLanguage    = errors.New("unsupported language")
)

// ClassificationError reports a failed classification turn.
type ClassificationError struct {
	SessionID string
	Err       error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed for session %s: %v", e.SessionID, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
