package fakes

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
)

// Notifier records delivered notices. It can be told to fail a number of calls first.
type Notifier struct {
	mu       sync.Mutex
	notices  []notification.Notice
	failures int
	err      error
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// FailTimes makes the next n calls fail with err.
func (n *Notifier) FailTimes(times int, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.failures = times
	n.err = err
}

func (n *Notifier) Notify(_ context.Context, notice notification.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failures > 0 {
		n.failures--

		return n.err
	}

	n.notices = append(n.notices, notice)

	return nil
}

// Notices returns the delivered notices in delivery order.
func (n *Notifier) Notices() []notification.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]notification.Notice(nil), n.notices...)
}

// Kinds returns the kinds of the delivered notices in delivery order.
func (n *Notifier) Kinds() []notification.Kind {
	notices := n.Notices()
	kinds := make([]notification.Kind, 0, len(notices))

	for _, notice := range notices {
		kinds = append(kinds, notice.Kind)
	}

	return kinds
}

// RetryQueue collects notices handed over for redelivery.
type RetryQueue struct {
	mu      sync.Mutex
	notices []notification.Notice
	err     error
}

func NewRetryQueue() *RetryQueue {
	return &RetryQueue{}
}

// FailWith makes Enqueue fail with err.
func (q *RetryQueue) FailWith(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.err = err
}

func (q *RetryQueue) Enqueue(_ context.Context, notice notification.Notice) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}

	q.notices = append(q.notices, notice)

	return nil
}

func (q *RetryQueue) Notices() []notification.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]notification.Notice(nil), q.notices...)
}
