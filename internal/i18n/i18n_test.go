package i18n

import (
	"errors"
	"testing"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		tag  string
		want domain.Language
	}{
		{"en", domain.LanguageEnglish},
		{"en-GB", domain.LanguageEnglish},
		{"hi", domain.LanguageHindi},
		{"hi-IN", domain.LanguageHindi},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := Parse(tt.tag)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParse_Unsupported(t *testing.T) {
	for _, tag := range []string{"fr", "ja-JP", "not a tag"} {
		_, err := Parse(tag)
		if !errors.Is(err, domain.ErrUnsupportedLanguage) {
			t.Errorf("Parse(%q): expected ErrUnsupportedLanguage, got %v", tag, err)
		}
	}
}

func TestLookup_FallsBackToEnglish(t *testing.T) {
	got := Lookup(domain.Language("pt"))
	if got.VoiceLocale != "en-US" {
		t.Errorf("expected en-US fallback, got %q", got.VoiceLocale)
	}
	if VoiceLocale(domain.LanguageHindi) != "hi-IN" {
		t.Errorf("expected hi-IN for Hindi")
	}
}

func TestNotification_IsLocalized(t *testing.T) {
	n := Notification(domain.LanguageHindi, domain.NotificationWarning, domain.CodeVoiceInputUnsupported)
	if n.Text != table[domain.LanguageHindi].VoiceInputUnsupported {
		t.Errorf("expected Hindi text, got %q", n.Text)
	}
	if n.Kind != domain.NotificationWarning || n.Code != domain.CodeVoiceInputUnsupported {
		t.Errorf("unexpected notification %+v", n)
	}
}
