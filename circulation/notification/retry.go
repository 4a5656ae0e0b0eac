package notification

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// DeliverNoticeTask redelivers a notice whose first attempt failed.
	DeliverNoticeTask = "notice:deliver"

	defaultMaxRetry = 8
)

// NewDeliverTask wraps the notice into an asynq task.
func NewDeliverTask(notice Notice) (*asynq.Task, error) {
	payload, err := jsonAPI.Marshal(notice)
	if err != nil {
		return nil, fmt.Errorf("marshal notice: %w", err)
	}

	return asynq.NewTask(DeliverNoticeTask, payload), nil
}

// AsynqRetryQueue enqueues failed notices into a Redis backed asynq queue.
type AsynqRetryQueue struct {
	client   *asynq.Client
	maxRetry int
}

// NewAsynqRetryQueue creates the queue. A maxRetry <= 0 selects the default.
func NewAsynqRetryQueue(client *asynq.Client, maxRetry int) *AsynqRetryQueue {
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}

	return &AsynqRetryQueue{client: client, maxRetry: maxRetry}
}

// Enqueue schedules redelivery. The notice ID is the task ID so a notice is queued at most once.
func (q *AsynqRetryQueue) Enqueue(ctx context.Context, notice Notice) error {
	task, err := NewDeliverTask(notice)
	if err != nil {
		return err
	}

	if _, err = q.client.EnqueueContext(ctx, task, asynq.MaxRetry(q.maxRetry), asynq.TaskID(notice.ID.String())); err != nil {
		return fmt.Errorf("enqueue notice: %w", err)
	}

	return nil
}

// RetryWorker is plugged into the asynq server and redelivers queued notices.
type RetryWorker struct {
	notifier Notifier
}

// NewRetryWorker constructs a RetryWorker.
func NewRetryWorker(notifier Notifier) *RetryWorker {
	return &RetryWorker{notifier: notifier}
}

// Handler registers the delivery task handler.
func (w *RetryWorker) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(DeliverNoticeTask, w.ProcessTask)

	return mux
}

// ProcessTask decodes the notice and delivers it. A returned error makes asynq retry the task.
func (w *RetryWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var notice Notice
	if err := jsonAPI.Unmarshal(task.Payload(), &notice); err != nil {
		return fmt.Errorf("decode notice: %w: %w", err, asynq.SkipRetry)
	}

	if err := w.notifier.Notify(ctx, notice); err != nil {
		return fmt.Errorf("deliver notice %s: %w", notice.ID, err)
	}

	return nil
}
