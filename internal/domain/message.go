package domain

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Suggestion is an open-ended category tag attached to an assistant reply.
type Suggestion string

const (
	SuggestionRest      Suggestion = "rest"
	SuggestionDoctor    Suggestion = "doctor"
	SuggestionEmergency Suggestion = "emergency"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Message is one entry of the conversation history. Confidence and
// Suggestion are only set on assistant replies.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Confidence string     `json:"confidence,omitempty"`
	Suggestion Suggestion `json:"suggestion,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ClassificationResult struct {
	Reply      string     `json:"reply"`
	Confidence string     `json:"confidence"`
	Suggestion Suggestion `json:"suggestion"`
}

// Validate rejects partially populated results.
func (r ClassificationResult) Validate() error {
	if r.Reply == "" || r.Confidence == "" || r.Suggestion == "" {
		return ErrPartialResult
	}
	return nil
}
