package websocket

import (
	"encoding/json"

	"github.com/seu-repo/symptom-assistant/internal/adapter/voice"
	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// Frame is the envelope of every message on /ws/sessions.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client to server.
const (
	FrameHello             = "hello"
	FrameSubmit            = "submit"
	FrameDraft             = "draft"
	FrameLanguage          = "language"
	FrameVoiceCapture      = "voice.capture"
	FrameSpeak             = "speak"
	FrameSpeakStop         = "speak.stop"
	FrameVoiceInputPrefix  = "voice.input."
	FrameVoiceOutputPrefix = "voice.output."
)

// Server to client. Voice commands use the names in package voice.
const (
	FrameState        = "state"
	FrameNotification = "notification"
	FrameError        = "error"
)

type HelloPayload struct {
	Language     string             `json:"language"`
	Capabilities voice.Capabilities `json:"capabilities"`
}

type TextPayload struct {
	Text string `json:"text"`
}

type LanguagePayload struct {
	Language string `json:"language"`
}

type SpeakPayload struct {
	Content string `json:"content"`
}

type TranscriptPayload struct {
	Transcript string `json:"transcript"`
}

// PlaybackPayload names the utterance a voice.output.* event belongs to.
type PlaybackPayload struct {
	ID uint64 `json:"id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// StatePayload wraps a snapshot so clients can tell sessions apart.
type StatePayload struct {
	State domain.SessionState `json:"state"`
}

func encodeFrame(kind string, payload interface{}) ([]byte, error) {
	f := Frame{Type: kind}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		f.Payload = raw
	}
	return json.Marshal(f)
}
