package shell

import (
	"context"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

const (
	// LogMsgCommandCompleted is logged when a use-case succeeds.
	LogMsgCommandCompleted = "command handler completed"

	// LogMsgCommandRejected is logged when a business rule rejects a use-case.
	LogMsgCommandRejected = "command handler rejected"

	// LogMsgCommandFailed is logged when a use-case fails for technical reasons.
	LogMsgCommandFailed = "command handler failed"

	// LogMsgInventoryViolation is logged when a counter would go negative or the ledger invariant breaks.
	LogMsgInventoryViolation = "inventory invariant violated"

	// LogAttrCommandType identifies the command type in logs.
	LogAttrCommandType = "command_type"

	// LogAttrBusinessOutcome classifies the business result: success, idempotent or an error kind.
	LogAttrBusinessOutcome = "business_outcome"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrRetryAttempts is the number of Query -> Decide -> Append attempts.
	LogAttrRetryAttempts = "retry_attempts"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// LogAttrSeverity marks entries that need immediate attention.
	LogAttrSeverity = "severity"

	// SeverityCritical is the LogAttrSeverity value of data integrity problems.
	SeverityCritical = "critical"

	// OutcomeSuccess indicates that events were appended.
	OutcomeSuccess = "success"

	// OutcomeIdempotent indicates no state change was needed.
	OutcomeIdempotent = "idempotent"
)

// Logger interface for basic logging.
type Logger = eventstore.Logger

// ContextualLogger interface for context-aware logging.
type ContextualLogger = eventstore.ContextualLogger

// ToMilliseconds converts a duration to milliseconds as float64.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// LogCommandSuccess logs a completed use-case.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	result HandlerResult,
	duration time.Duration,
) {
	outcome := OutcomeSuccess
	if result.Idempotent {
		outcome = OutcomeIdempotent
	}

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, outcome,
		LogAttrRetryAttempts, result.RetryAttempts,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgCommandCompleted, args...)
	}
}

// LogCommandError logs a failed use-case. Business rejections are logged at info level,
// inventory violations at error level with severity=critical, everything else at error level.
func LogCommandError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	err error,
) {
	kind := core.KindOf(err)

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, kind,
		LogAttrError, err.Error(),
	}

	switch kind {
	case core.KindInventoryViolation:
		args = append(args, LogAttrSeverity, SeverityCritical)
		logError(ctx, logger, contextualLogger, LogMsgInventoryViolation, args...)

	case core.KindExternalDependency, core.KindUnknown:
		logError(ctx, logger, contextualLogger, LogMsgCommandFailed, args...)

	default:
		if contextualLogger != nil {
			contextualLogger.InfoContext(ctx, LogMsgCommandRejected, args...)
		} else if logger != nil {
			logger.Info(LogMsgCommandRejected, args...)
		}
	}
}

func logError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}
