package domain

type VoiceInputEventKind string

const (
	VoiceInputStart  VoiceInputEventKind = "start"
	VoiceInputResult VoiceInputEventKind = "result"
	VoiceInputEnd    VoiceInputEventKind = "end"
)

func (k VoiceInputEventKind) Valid() bool {
	switch k {
	case VoiceInputStart, VoiceInputResult, VoiceInputEnd:
		return true
	}
	return false
}

// VoiceInputEvent is emitted by a speech capture adapter. Transcript is only
// set on result events.
type VoiceInputEvent struct {
	Kind       VoiceInputEventKind `json:"kind"`
	Transcript string              `json:"transcript,omitempty"`
}

type VoiceOutputEventKind string

const (
	VoiceOutputStart VoiceOutputEventKind = "start"
	VoiceOutputEnd   VoiceOutputEventKind = "end"
)

func (k VoiceOutputEventKind) Valid() bool {
	return k == VoiceOutputStart || k == VoiceOutputEnd
}

type VoiceOutputEvent struct {
	Kind VoiceOutputEventKind `json:"kind"`
}
