package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/adapter/queue"
	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

// QueueRecorder publishes consultations for a ConsultationWorker to store.
type QueueRecorder struct {
	mq      queue.MessageQueue
	subject string
	log     *zap.Logger
}

func NewQueueRecorder(mq queue.MessageQueue, subject string, log *zap.Logger) *QueueRecorder {
	if subject == "" {
		subject = DefaultSubject
	}
	return &QueueRecorder{mq: mq, subject: subject, log: log}
}

func (r *QueueRecorder) Record(ctx context.Context, c domain.Consultation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode consultation: %w", err)
	}
	if err := r.mq.Publish(ctx, r.subject, data); err != nil {
		return fmt.Errorf("publish consultation %s: %w", c.ID, err)
	}
	return nil
}

// ConsultationWorker consumes published consultations and saves them.
type ConsultationWorker struct {
	mq      queue.MessageQueue
	repo    ports.ConsultationRepository
	subject string
	log     *zap.Logger
}

func NewConsultationWorker(mq queue.MessageQueue, repo ports.ConsultationRepository, subject string, log *zap.Logger) *ConsultationWorker {
	if subject == "" {
		subject = DefaultSubject
	}
	return &ConsultationWorker{
		mq:      mq,
		repo:    repo,
		subject: subject,
		log:     log,
	}
}

// Start subscribes to the subject. Messages are handled on the queue
// client's goroutines until the queue is closed.
func (w *ConsultationWorker) Start() error {
	if err := w.mq.Subscribe(w.subject, w.handle); err != nil {
		return fmt.Errorf("subscribe %s: %w", w.subject, err)
	}
	w.log.Info("Consultation worker started", zap.String("subject", w.subject))
	return nil
}

func (w *ConsultationWorker) handle(ctx context.Context, data []byte) error {
	var c domain.Consultation
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decode consultation: %w", err)
	}
	if c.ID == "" || c.SessionID == "" {
		return errors.New("consultation without id or session")
	}

	if err := w.repo.Save(ctx, &c); err != nil {
		return fmt.Errorf("save consultation %s: %w", c.ID, err)
	}

	w.log.Debug("Consultation persisted from queue",
		zap.String("consultation_id", c.ID),
		zap.String("session_id", c.SessionID),
	)
	return nil
}
