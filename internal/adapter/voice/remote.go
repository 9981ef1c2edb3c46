package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// Commands sent to the client that performs the actual speech work.
const (
	CommandCaptureStart = "voice.capture.start"
	CommandSpeak        = "voice.speak"
	CommandCancel       = "voice.cancel"
)

// Sender delivers a command frame to the remote client.
type Sender interface {
	SendCommand(kind string, payload interface{}) error
}

// Capabilities are announced by the client when it connects.
type Capabilities struct {
	SpeechRecognition bool `json:"speech_recognition"`
	SpeechSynthesis   bool `json:"speech_synthesis"`
}

type CapturePayload struct {
	Language domain.Language `json:"language"`
}

// SpeakPayload carries an utterance id that the client echoes back in its
// playback events.
type SpeakPayload struct {
	ID     uint64 `json:"id"`
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// Remote bridges a session to a client that records and plays speech on
// its side. Events reported by the client are routed to the callback of
// the cycle that is currently running; a new cycle replaces the callback
// and an end event retires it. Playback events must name the utterance
// they belong to.
type Remote struct {
	sender Sender
	caps   Capabilities

	mu         sync.Mutex
	inputEmit  func(domain.VoiceInputEvent)
	outputEmit func(domain.VoiceOutputEvent)
	utterance  uint64
}

func NewRemote(sender Sender, caps Capabilities) *Remote {
	return &Remote{sender: sender, caps: caps}
}

func (r *Remote) Input() *RemoteInput {
	return &RemoteInput{r: r}
}

func (r *Remote) Output() *RemoteOutput {
	return &RemoteOutput{r: r}
}

// DispatchInput routes a capture event from the client. It reports false
// when no capture cycle is active.
func (r *Remote) DispatchInput(ev domain.VoiceInputEvent) bool {
	r.mu.Lock()
	emit := r.inputEmit
	if ev.Kind == domain.VoiceInputEnd {
		r.inputEmit = nil
	}
	r.mu.Unlock()

	if emit == nil {
		return false
	}
	emit(ev)
	return true
}

// DispatchOutput routes a playback event for utterance id. Events of an
// utterance that was cancelled or replaced are dropped.
func (r *Remote) DispatchOutput(id uint64, ev domain.VoiceOutputEvent) bool {
	r.mu.Lock()
	if id != r.utterance {
		r.mu.Unlock()
		return false
	}
	emit := r.outputEmit
	if ev.Kind == domain.VoiceOutputEnd {
		r.outputEmit = nil
	}
	r.mu.Unlock()

	if emit == nil {
		return false
	}
	emit(ev)
	return true
}

type RemoteInput struct {
	r *Remote
}

func (in *RemoteInput) Available() bool {
	return in.r.caps.SpeechRecognition
}

func (in *RemoteInput) Start(ctx context.Context, lang domain.Language, emit func(domain.VoiceInputEvent)) error {
	if !in.Available() {
		return domain.ErrVoiceInputUnsupported
	}

	in.r.mu.Lock()
	in.r.inputEmit = emit
	in.r.mu.Unlock()

	if err := in.r.sender.SendCommand(CommandCaptureStart, CapturePayload{Language: lang}); err != nil {
		in.r.mu.Lock()
		in.r.inputEmit = nil
		in.r.mu.Unlock()
		return fmt.Errorf("send %s: %w", CommandCaptureStart, err)
	}
	return nil
}

type RemoteOutput struct {
	r *Remote
}

func (out *RemoteOutput) Available() bool {
	return out.r.caps.SpeechSynthesis
}

func (out *RemoteOutput) Speak(ctx context.Context, text, locale string, emit func(domain.VoiceOutputEvent)) error {
	if !out.Available() {
		return domain.ErrVoiceOutputUnsupported
	}

	out.r.mu.Lock()
	out.r.utterance++
	id := out.r.utterance
	out.r.outputEmit = emit
	out.r.mu.Unlock()

	if err := out.r.sender.SendCommand(CommandSpeak, SpeakPayload{ID: id, Text: text, Locale: locale}); err != nil {
		out.r.mu.Lock()
		out.r.outputEmit = nil
		out.r.mu.Unlock()
		return fmt.Errorf("send %s: %w", CommandSpeak, err)
	}
	return nil
}

// Cancel asks the client to stop playback and retires the current callback.
func (out *RemoteOutput) Cancel() error {
	out.r.mu.Lock()
	out.r.outputEmit = nil
	out.r.mu.Unlock()

	if err := out.r.sender.SendCommand(CommandCancel, nil); err != nil {
		return fmt.Errorf("send %s: %w", CommandCancel, err)
	}
	return nil
}
