package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/patronprofile"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/payment"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/reservationcode"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

const defaultSweepParallelism = 4

// IDGenerator creates ids for new requests, checkouts, reservations and digital borrows.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator creates random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Orchestrator runs the circulation use-cases.
type Orchestrator struct {
	eventStore       shell.EventStore
	policy           core.CirculationPolicy
	gateway          payment.Gateway
	clock            shell.Clock
	ids              IDGenerator
	codes            reservationcode.Issuer
	notifier         notification.Notifier
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	retryOptions     []shell.RetryOption
	sweepParallelism int
	profiles         patronprofile.QueryHandler
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the system clock.
func WithClock(clock shell.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *Orchestrator) {
		o.ids = ids
	}
}

// WithCodeIssuer sets where reservation codes come from. The default keeps them in memory.
func WithCodeIssuer(codes reservationcode.Issuer) Option {
	return func(o *Orchestrator) {
		o.codes = codes
	}
}

// WithNotifier sets the notice sink, usually a notification.Dispatcher.
func WithNotifier(notifier notification.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = notifier
	}
}

// WithLogger sets a logger for use-case outcomes.
func WithLogger(logger shell.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(o *Orchestrator) {
		o.contextualLogger = logger
	}
}

// WithRetryOptions passes retry settings to every command handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(o *Orchestrator) {
		o.retryOptions = opts
	}
}

// WithSweepParallelism bounds how many candidates a sweep processes at once.
func WithSweepParallelism(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.sweepParallelism = n
		}
	}
}

// New creates an Orchestrator on top of the event store.
func New(eventStore shell.EventStore, policy core.CirculationPolicy, gateway payment.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		eventStore:       eventStore,
		policy:           policy,
		gateway:          gateway,
		clock:            shell.SystemClock{},
		ids:              UUIDGenerator{},
		codes:            reservationcode.NewMemoryIssuer(),
		sweepParallelism: defaultSweepParallelism,
		profiles:         patronprofile.NewQueryHandler(eventStore),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Policy returns the circulation policy the orchestrator decides with.
func (o *Orchestrator) Policy() core.CirculationPolicy {
	return o.policy
}

// execute runs one command handler call and takes care of logging and notices.
func (o *Orchestrator) execute(
	ctx context.Context,
	commandType string,
	handle func(ctx context.Context) (shell.HandlerResult, error),
) (shell.HandlerResult, error) {

	start := time.Now()

	result, err := handle(ctx)
	if err != nil {
		shell.LogCommandError(ctx, o.logger, o.contextualLogger, commandType, err)

		return result, err
	}

	shell.LogCommandSuccess(ctx, o.logger, o.contextualLogger, commandType, result, time.Since(start))
	o.notify(ctx, result.Events)

	return result, nil
}

// withCorrelation makes all commands of one use-case share a correlation id.
func withCorrelation(ctx context.Context) context.Context {
	return shell.WithCorrelationID(ctx, shell.CorrelationIDFrom(ctx))
}

func (o *Orchestrator) notify(ctx context.Context, events core.DomainEvents) {
	if o.notifier == nil || len(events) == 0 {
		return
	}

	locales := map[core.PatronIDString]language.Tag{}

	notices := notification.NoticesFrom(events, func(patronID core.PatronIDString) language.Tag {
		if tag, ok := locales[patronID]; ok {
			return tag
		}

		tag := language.English

		profile, err := o.profiles.Handle(ctx, patronprofile.BuildQuery(patronID))
		if err == nil {
			tag = notification.ParseLocale(profile.Locale)
		}

		locales[patronID] = tag

		return tag
	})

	for _, notice := range notices {
		if err := o.notifier.Notify(ctx, notice); err != nil {
			o.warn(ctx, "notice not delivered", "kind", string(notice.Kind), "patron_id", notice.PatronID, shell.LogAttrError, err.Error())
		}
	}
}

func (o *Orchestrator) issueCode(ctx context.Context) (string, error) {
	code, err := o.codes.Issue(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrExternalDependency, err)
	}

	return code, nil
}

// codeIfAvailable issues a code for commands that only need one to hand a copy to a waiting
// patron. Without a code the command still runs and refuses just that hand-off.
func (o *Orchestrator) codeIfAvailable(ctx context.Context) string {
	code, err := o.codes.Issue(ctx)
	if err != nil {
		o.warn(ctx, "reservation code not issued", shell.LogAttrError, err.Error())

		return ""
	}

	return code
}

// releaseCode frees a code whose reservation was collected or which no command used.
func (o *Orchestrator) releaseCode(ctx context.Context, code string) {
	releaser, ok := o.codes.(reservationcode.Releaser)
	if !ok || code == "" {
		return
	}

	if err := releaser.Release(ctx, code); err != nil {
		o.warn(ctx, "reservation code not released", shell.LogAttrError, err.Error())
	}
}

// releaseUnusedCode frees code unless one of the appended events assigned it.
func (o *Orchestrator) releaseUnusedCode(ctx context.Context, code string, appended core.DomainEvents) {
	for _, event := range appended {
		if e, ok := event.(core.ReservationAssigned); ok && e.ReservationCode == code {
			return
		}
	}

	o.releaseCode(ctx, code)
}

func (o *Orchestrator) now() time.Time {
	return core.ToOccurredAt(o.clock.Now())
}

func (o *Orchestrator) warn(ctx context.Context, msg string, args ...any) {
	if o.contextualLogger != nil {
		o.contextualLogger.WarnContext(ctx, msg, args...)
	} else if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}

func (o *Orchestrator) info(ctx context.Context, msg string, args ...any) {
	if o.contextualLogger != nil {
		o.contextualLogger.InfoContext(ctx, msg, args...)
	} else if o.logger != nil {
		o.logger.Info(msg, args...)
	}
}
