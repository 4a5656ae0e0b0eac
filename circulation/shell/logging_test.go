package shell_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}

	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func Test_LogCommandError_MarksInventoryViolationsCritical(t *testing.T) {
	// arrange
	logger, buf := newBufferLogger()
	err := errors.Join(core.ErrInventoryViolation, errors.New("borrowed would become -1"))

	// act
	shell.LogCommandError(context.Background(), nil, logger, "ReturnItem", err)

	// assert
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "severity=critical")
	assert.Contains(t, buf.String(), "business_outcome=inventory_violation")
}

func Test_LogCommandError_LogsBusinessRejectionsAtInfo(t *testing.T) {
	// arrange
	logger, buf := newBufferLogger()

	// act
	shell.LogCommandError(context.Background(), logger, nil, "ExtendBorrow", core.EligibilityError("limit reached"))

	// assert
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "business_outcome=eligibility")
	assert.NotContains(t, buf.String(), "severity")
}

func Test_LogCommandSuccess_ReportsIdempotentOutcome(t *testing.T) {
	// arrange
	logger, buf := newBufferLogger()

	// act
	shell.LogCommandSuccess(context.Background(), nil, logger, "AssignNextReservation", shell.HandlerResult{Idempotent: true, RetryAttempts: 1}, time.Millisecond)

	// assert
	assert.Contains(t, buf.String(), "business_outcome=idempotent")
	assert.Contains(t, buf.String(), "retry_attempts=1")
}
