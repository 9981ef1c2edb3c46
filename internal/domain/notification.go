package domain

type NotificationKind string

const (
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

type NotificationCode string

const (
	CodeClassificationFailed   NotificationCode = "classification_failed"
	CodeVoiceInputUnsupported  NotificationCode = "voice_input_unsupported"
	CodeVoiceOutputUnsupported NotificationCode = "voice_output_unsupported"
	CodeRequestPending         NotificationCode = "request_pending"
	CodeSpeechInProgress       NotificationCode = "speech_in_progress"
	CodeVoiceBusy              NotificationCode = "voice_busy"
)

// Notification is a transient user-visible message. Text is already
// localized for the session language.
type Notification struct {
	Kind NotificationKind `json:"kind"`
	Code NotificationCode `json:"code"`
	Text string           `json:"text"`
}
