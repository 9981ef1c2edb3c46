package domain

// SessionState is a point-in-time snapshot of a dialogue session.
type SessionState struct {
	ID               string    `json:"id"`
	Messages         []Message `json:"messages"`
	DraftInput       string    `json:"draft_input"`
	IsRequestPending bool      `json:"is_request_pending"`
	IsListening      bool      `json:"is_listening"`
	IsSpeaking       bool      `json:"is_speaking"`
	Language         Language  `json:"language"`
}
