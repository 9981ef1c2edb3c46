package queue

import "context"

// MessageQueue carries consultation records between the sessions that
// produce them and the worker that persists them.
type MessageQueue interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(subject string, handler func(ctx context.Context, data []byte) error) error
	Healthy() bool
	Close() error
}
