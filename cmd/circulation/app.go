package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/health"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/orchestrator"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/payment"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/reservationcode"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell/config"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore/postgresengine"
)

const (
	logMsgNotificationsDisabled = "notifications disabled, RABBITMQ_URL is empty"

	checkPostgres        = "postgres"
	checkPostgresReplica = "postgres-replica"
	checkRedis           = "redis"
)

// app holds the wired infrastructure of one CLI invocation.
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	eventStore   postgresengine.EventStore
	redis        *redis.Client
	publisher    *notification.Publisher
	orchestrator *orchestrator.Orchestrator
	checks       []health.Option
	closers      []func() error
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the env file and the configuration. It does not connect anywhere.
func loadConfig(opts *rootOptions) (config.Config, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return config.Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// openEventStore connects the event store with the configured adapter.
func openEventStore(ctx context.Context, a *app) error {
	pg := a.cfg.Postgres
	storeOpts := []postgresengine.Option{
		postgresengine.WithTableName(pg.TableName),
		postgresengine.WithLogger(a.logger),
	}

	var err error

	switch pg.Adapter {
	case config.AdapterSQLDB:
		db, openErr := pg.OpenSQLDB(ctx)
		if openErr != nil {
			return openErr
		}

		a.closers = append(a.closers, db.Close)
		a.checks = append(a.checks, health.WithCheck(checkPostgres, health.SQLCheck(db)))
		a.eventStore, err = postgresengine.NewEventStoreFromSQLDB(db, storeOpts...)

	case config.AdapterSQLX:
		db, openErr := pg.OpenSQLX(ctx)
		if openErr != nil {
			return openErr
		}

		a.closers = append(a.closers, db.Close)
		a.checks = append(a.checks, health.WithCheck(checkPostgres, health.SQLCheck(db)))
		a.eventStore, err = postgresengine.NewEventStoreFromSQLX(db, storeOpts...)

	default:
		pool, openErr := pg.OpenPGXPool(ctx)
		if openErr != nil {
			return openErr
		}

		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.checks = append(a.checks, health.WithCheck(checkPostgres, health.PingCheck(pool)))

		if !pg.HasReplica() {
			a.eventStore, err = postgresengine.NewEventStoreFromPGXPool(pool, storeOpts...)
			break
		}

		replica, openErr := pg.OpenPGXReplicaPool(ctx)
		if openErr != nil {
			return openErr
		}

		a.closers = append(a.closers, func() error { replica.Close(); return nil })
		a.checks = append(a.checks, health.WithCheck(checkPostgresReplica, health.PingCheck(replica)))
		a.eventStore, err = postgresengine.NewEventStoreFromPGXPoolAndReplica(pool, replica, storeOpts...)
	}

	if err != nil {
		return fmt.Errorf("create event store: %w", err)
	}

	return nil
}

func (a *app) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: a.cfg.Redis.Addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB}
}

// buildApp wires the event store, Redis, the notification pipeline, the payment gateway
// and the orchestrator.
func buildApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	policy, err := config.LoadPolicy(opts.policyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	a := &app{cfg: cfg, logger: newLogger(cfg.LogLevel)}

	if err = openEventStore(ctx, a); err != nil {
		return nil, errors.Join(err, a.close())
	}

	a.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	a.closers = append(a.closers, a.redis.Close)
	a.checks = append(a.checks, health.WithCheck(checkRedis, health.RedisCheck(a.redis)))

	orchestratorOpts := []orchestrator.Option{
		orchestrator.WithCodeIssuer(reservationcode.NewRedisIssuer(a.redis, cfg.ReservationCodeTTL)),
		orchestrator.WithContextualLogger(a.logger),
		orchestrator.WithSweepParallelism(cfg.Sweep.Parallelism),
	}

	if cfg.RabbitMQ.URL == "" {
		a.logger.Warn(logMsgNotificationsDisabled)
	} else {
		a.publisher, err = notification.DialPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, errors.Join(err, a.close())
		}

		a.closers = append(a.closers, a.publisher.Close)

		retryClient := asynq.NewClient(a.redisOpt())
		a.closers = append(a.closers, retryClient.Close)

		dispatcher := notification.NewDispatcher(
			a.publisher,
			notification.WithRetryQueue(notification.NewAsynqRetryQueue(retryClient, 0)),
			notification.WithTimeout(cfg.NotificationTimeout),
			notification.WithLogger(a.logger),
		)

		orchestratorOpts = append(orchestratorOpts, orchestrator.WithNotifier(dispatcher))
	}

	gateway := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.Timeout)
	a.orchestrator = orchestrator.New(a.eventStore, policy, gateway, orchestratorOpts...)

	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	a.closers = nil

	return errors.Join(errs...)
}
