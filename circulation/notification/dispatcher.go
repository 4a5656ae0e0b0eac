package notification

import (
	"context"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

const defaultNotifyTimeout = 5 * time.Second

// RetryQueue takes over notices whose first delivery attempt failed.
type RetryQueue interface {
	Enqueue(ctx context.Context, notice Notice) error
}

// Dispatcher delivers notices without ever failing the caller.
// A failed delivery is logged and handed to the retry queue, if one is configured.
type Dispatcher struct {
	notifier Notifier
	retry    RetryQueue
	timeout  time.Duration
	logger   eventstore.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRetryQueue enables redelivery of failed notices.
func WithRetryQueue(retry RetryQueue) DispatcherOption {
	return func(d *Dispatcher) {
		d.retry = retry
	}
}

// WithTimeout bounds a single delivery attempt.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger for delivery failures.
func WithLogger(logger eventstore.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher in front of the notifier.
func NewDispatcher(notifier Notifier, opts ...DispatcherOption) *Dispatcher {
	dispatcher := &Dispatcher{
		notifier: notifier,
		timeout:  defaultNotifyTimeout,
	}

	for _, opt := range opts {
		opt(dispatcher)
	}

	return dispatcher
}

// Notify delivers one notice. It always returns nil.
// The attempt is detached from the caller's cancellation so a finished command still notifies.
func (d *Dispatcher) Notify(ctx context.Context, notice Notice) error {
	if d == nil || d.notifier == nil {
		return nil
	}

	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	err := d.notifier.Notify(attemptCtx, notice)
	if err == nil {
		return nil
	}

	if d.logger != nil {
		d.logger.Warn("notice delivery failed",
			"notice_id", notice.ID.String(), "kind", string(notice.Kind), "patron_id", notice.PatronID, "error", err.Error())
	}

	if d.retry == nil {
		return nil
	}

	if enqueueErr := d.retry.Enqueue(attemptCtx, notice); enqueueErr != nil && d.logger != nil {
		d.logger.Error("notice retry enqueue failed",
			"notice_id", notice.ID.String(), "kind", string(notice.Kind), "error", enqueueErr.Error())
	}

	return nil
}
