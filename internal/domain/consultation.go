package domain

import (
	"time"
)

// Consultation is the record handed to the persistence collaborator after
// every successful turn.
type Consultation struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	SessionID        string     `json:"session_id" gorm:"index"`
	SymptomInput     string     `json:"symptom_input"`
	AIResponse       string     `json:"ai_response"`
	ConfidenceScore  string     `json:"confidence_score"`
	SuggestionType   Suggestion `json:"suggestion_type" gorm:"index"`
	LanguageSelected Language   `json:"language_selected"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (Consultation) TableName() string {
	return "consultations"
}
