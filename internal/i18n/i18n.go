// Package i18n holds the static UI string table for the two supported
// locales.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

type Strings struct {
	Title                  string `json:"title"`
	Placeholder            string `json:"placeholder"`
	Send                   string `json:"send"`
	Listening              string `json:"listening"`
	Speak                  string `json:"speak"`
	Stop                   string `json:"stop"`
	Confidence             string `json:"confidence"`
	Suggestion             string `json:"suggestion"`
	ClassificationFailed   string `json:"classification_failed"`
	VoiceInputUnsupported  string `json:"voice_input_unsupported"`
	VoiceOutputUnsupported string `json:"voice_output_unsupported"`
	RequestPending         string `json:"request_pending"`
	SpeechInProgress       string `json:"speech_in_progress"`
	VoiceBusy              string `json:"voice_busy"`
	VoiceLocale            string `json:"voice_locale"`
}

var table = map[domain.Language]Strings{
	domain.LanguageEnglish: {
		Title:                  "AI Symptom Checker",
		Placeholder:            "Describe your symptoms...",
		Send:                   "Send",
		Listening:              "Listening...",
		Speak:                  "Speak",
		Stop:                   "Stop",
		Confidence:             "Confidence",
		Suggestion:             "Suggestion",
		ClassificationFailed:   "Something went wrong. Please try again.",
		VoiceInputUnsupported:  "Voice input is not supported in this browser.",
		VoiceOutputUnsupported: "Voice output is not supported in this browser.",
		RequestPending:         "Please wait for the current reply.",
		SpeechInProgress:       "A reply is already being read aloud.",
		VoiceBusy:              "Finish speaking before playing a reply.",
		VoiceLocale:            "en-US",
	},
	domain.LanguageHindi: {
		Title:                  "एआई लक्षण जाँचकर्ता",
		Placeholder:            "अपने लक्षण बताइए...",
		Send:                   "भेजें",
		Listening:              "सुन रहा है...",
		Speak:                  "बोलें",
		Stop:                   "रोकें",
		Confidence:             "विश्वास",
		Suggestion:             "सुझाव",
		ClassificationFailed:   "कुछ गलत हो गया। कृपया फिर से प्रयास करें।",
		VoiceInputUnsupported:  "इस ब्राउज़र में आवाज़ इनपुट समर्थित नहीं है।",
		VoiceOutputUnsupported: "इस ब्राउज़र में आवाज़ आउटपुट समर्थित नहीं है।",
		RequestPending:         "कृपया वर्तमान उत्तर की प्रतीक्षा करें।",
		SpeechInProgress:       "एक उत्तर पहले से पढ़ा जा रहा है।",
		VoiceBusy:              "उत्तर चलाने से पहले बोलना समाप्त करें।",
		VoiceLocale:            "hi-IN",
	},
}

var (
	supported = []domain.Language{domain.LanguageEnglish, domain.LanguageHindi}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Hindi})
)

// Parse resolves a BCP 47 tag such as "hi-IN" or "en-GB" to a supported
// language.
func Parse(tag string) (domain.Language, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, tag)
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, tag)
	}
	return supported[idx], nil
}

// Lookup returns the strings for lang, falling back to English.
func Lookup(lang domain.Language) Strings {
	if s, ok := table[lang]; ok {
		return s
	}
	return table[domain.LanguageEnglish]
}

func VoiceLocale(lang domain.Language) string {
	return Lookup(lang).VoiceLocale
}

// Notification builds a localized notification for code.
func Notification(lang domain.Language, kind domain.NotificationKind, code domain.NotificationCode) domain.Notification {
	s := Lookup(lang)
	var text string
	switch code {
	case domain.CodeClassificationFailed:
		text = s.ClassificationFailed
	case domain.CodeVoiceInputUnsupported:
		text = s.VoiceInputUnsupported
	case domain.CodeVoiceOutputUnsupported:
		text = s.VoiceOutputUnsupported
	case domain.CodeRequestPending:
		text = s.RequestPending
	case domain.CodeSpeechInProgress:
		text = s.SpeechInProgress
	case domain.CodeVoiceBusy:
		text = s.VoiceBusy
	}
	return domain.Notification{Kind: kind, Code: code, Text: text}
}

func Supported() []domain.Language {
	out := make([]domain.Language, len(supported))
	copy(out, supported)
	return out
}
