package shell

import (
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// HandlerResult represents the outcome of a command handler execution.
// It captures the business outcome and the retry metadata of the execution.
type HandlerResult struct {
	// Idempotent indicates that the command required no state change.
	Idempotent bool

	// Events holds the events appended by the successful attempt.
	Events core.DomainEvents

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true when every attempt failed with a concurrency conflict.
	RetriesExhausted bool
}

func NewSuccessResult(retryMetrics RetryMetrics, events core.DomainEvents) HandlerResult {
	result := resultFrom(retryMetrics)
	result.Events = events

	return result
}

func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	result := resultFrom(retryMetrics)
	result.Idempotent = true

	return result
}

func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics)
}

func resultFrom(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
