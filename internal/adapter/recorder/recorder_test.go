package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func sampleConsultation() domain.Consultation {
	return domain.Consultation{
		ID:               "c-1",
		SessionID:        "s-1",
		SymptomInput:     "fever",
		AIResponse:       "Rest.",
		ConfidenceScore:  "80%",
		SuggestionType:   domain.SuggestionRest,
		LanguageSelected: domain.LanguageEnglish,
		CreatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRepositoryRecorder_Record(t *testing.T) {
	// Arrange
	repo := &mocks.MockConsultationRepository{}
	r := NewRepositoryRecorder(repo, newTestLogger())

	// Act
	err := r.Record(context.Background(), sampleConsultation())

	// Assert
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if repo.SavedCount() != 1 {
		t.Errorf("SavedCount() = %d, want 1", repo.SavedCount())
	}
}

func TestRepositoryRecorder_RetriesThenFails(t *testing.T) {
	// Arrange
	var attempts int32
	repo := &mocks.MockConsultationRepository{
		SaveFunc: func(ctx context.Context, c *domain.Consultation) error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("connection refused")
		},
	}
	r := NewRepositoryRecorder(repo, newTestLogger())

	// Act
	err := r.Record(context.Background(), sampleConsultation())

	// Assert
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&attempts); got != saveRetries+1 {
		t.Errorf("attempts = %d, want %d", got, saveRetries+1)
	}
}

func TestLogRecorder_Record(t *testing.T) {
	r := NewLogRecorder(newTestLogger())
	if err := r.Record(context.Background(), sampleConsultation()); err != nil {
		t.Errorf("Record() error = %v", err)
	}
}

func TestQueueRecorder_PublishesJSON(t *testing.T) {
	// Arrange
	mq := mocks.NewMockMessageQueue()
	r := NewQueueRecorder(mq, "", newTestLogger())

	// Act
	err := r.Record(context.Background(), sampleConsultation())

	// Assert
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	msgs := mq.GetPublishedMessages(DefaultSubject)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	var got domain.Consultation
	if err := json.Unmarshal(msgs[0], &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.ID != "c-1" || got.SuggestionType != domain.SuggestionRest {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestQueueRecorder_PublishError(t *testing.T) {
	// Arrange
	mq := mocks.NewMockMessageQueue()
	mq.PublishFunc = func(ctx context.Context, topic string, data []byte) error {
		return errors.New("nats: connection closed")
	}
	r := NewQueueRecorder(mq, "custom.subject", newTestLogger())

	// Act
	err := r.Record(context.Background(), sampleConsultation())

	// Assert
	if err == nil {
		t.Error("expected error")
	}
}

func TestConsultationWorker_SavesDeliveredMessages(t *testing.T) {
	// Arrange
	mq := mocks.NewMockMessageQueue()
	repo := &mocks.MockConsultationRepository{}
	w := NewConsultationWorker(mq, repo, "", newTestLogger())
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec := NewQueueRecorder(mq, "", newTestLogger())
	rec.Record(context.Background(), sampleConsultation())

	// Act
	err := mq.Deliver(DefaultSubject, mq.GetPublishedMessages(DefaultSubject)[0])

	// Assert
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if repo.SavedCount() != 1 {
		t.Fatalf("SavedCount() = %d, want 1", repo.SavedCount())
	}
	if !repo.Saved[0].CreatedAt.Equal(sampleConsultation().CreatedAt) {
		t.Errorf("CreatedAt = %v", repo.Saved[0].CreatedAt)
	}
}

func TestConsultationWorker_RejectsBadMessages(t *testing.T) {
	// Arrange
	mq := mocks.NewMockMessageQueue()
	repo := &mocks.MockConsultationRepository{}
	w := NewConsultationWorker(mq, repo, "", newTestLogger())
	w.Start()

	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("{")},
		{"missing id", []byte(`{"session_id":"s-1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := mq.Deliver(DefaultSubject, tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
	if repo.SavedCount() != 0 {
		t.Errorf("SavedCount() = %d, want 0", repo.SavedCount())
	}
}
