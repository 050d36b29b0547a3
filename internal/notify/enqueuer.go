package notify

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
)

// QueueName is the asynq queue that carries lead notifications.
const QueueName = "leads"

// Enqueuer schedules lead notifications.
type Enqueuer interface {
	EnqueueLead(ctx context.Context, p Payload) error
}

// AsynqEnqueuer enqueues tasks through an asynq client. Each lead is enqueued at most once.
type AsynqEnqueuer struct {
	Client   *asynq.Client
	MaxRetry int
}

// EnqueueLead implements Enqueuer.
func (e AsynqEnqueuer) EnqueueLead(ctx context.Context, p Payload) error {
	if e.Client == nil {
		return nil
	}
	task, err := NewLeadTask(p)
	if err != nil {
		return err
	}
	maxRetry := e.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 5
	}
	_, err = e.Client.EnqueueContext(ctx, task,
		asynq.Queue(QueueName),
		asynq.MaxRetry(maxRetry),
		asynq.TaskID(taskID(p)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// NopEnqueuer drops every notification. Used when Redis is not configured.
type NopEnqueuer struct{}

// EnqueueLead implements Enqueuer.
func (NopEnqueuer) EnqueueLead(context.Context, Payload) error { return nil }
