package notification_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fakes"
)

var errBrokerDown = errors.New("broker down")

func someNotice() notification.Notice {
	return notification.Notice{
		ID:       uuid.New(),
		Kind:     notification.KindLoanOverdue,
		PatronID: "patron-1",
		Locale:   language.English,
		Params:   map[string]string{notification.ParamItemID: "item-1"},
	}
}

func Test_Dispatcher_Notify_Delivers(t *testing.T) {
	// arrange
	notifier := fakes.NewNotifier()
	retry := fakes.NewRetryQueue()
	dispatcher := notification.NewDispatcher(notifier, notification.WithRetryQueue(retry))

	// act
	err := dispatcher.Notify(context.Background(), someNotice())

	// assert
	assert.NoError(t, err)
	assert.Len(t, notifier.Notices(), 1)
	assert.Empty(t, retry.Notices())
}

func Test_Dispatcher_Notify_EnqueuesForRetry_WhenDeliveryFails(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	notifier := fakes.NewNotifier()
	notifier.FailTimes(1, errBrokerDown)
	retry := fakes.NewRetryQueue()
	dispatcher := notification.NewDispatcher(
		notifier,
		notification.WithRetryQueue(retry),
		notification.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)
	notice := someNotice()

	// act
	err := dispatcher.Notify(context.Background(), notice)

	// assert
	assert.NoError(t, err)
	assert.Empty(t, notifier.Notices())
	assert.Equal(t, []notification.Notice{notice}, retry.Notices())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "broker down")
}

func Test_Dispatcher_Notify_SwallowsEnqueueFailure(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	notifier := fakes.NewNotifier()
	notifier.FailTimes(1, errBrokerDown)
	retry := fakes.NewRetryQueue()
	retry.FailWith(errors.New("redis down"))
	dispatcher := notification.NewDispatcher(
		notifier,
		notification.WithRetryQueue(retry),
		notification.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	// act
	err := dispatcher.Notify(context.Background(), someNotice())

	// assert
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "redis down")
}

func Test_Dispatcher_Notify_DeliversDespiteCancelledCaller(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	notifier := &ctxCheckingNotifier{}
	dispatcher := notification.NewDispatcher(notifier)

	// act
	_ = dispatcher.Notify(ctx, someNotice())

	// assert
	assert.NoError(t, notifier.ctxErr)
}

type ctxCheckingNotifier struct {
	ctxErr error
}

func (n *ctxCheckingNotifier) Notify(ctx context.Context, _ notification.Notice) error {
	n.ctxErr = ctx.Err()

	return nil
}
