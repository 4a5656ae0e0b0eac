// Package postgresengine provides a PostgreSQL implementation of the event store.
//
// All events live in a single table. A Filter selects the "dynamic event stream" a
// decision depends on, and Append only succeeds if that stream did not grow since the
// Query the decision was based on. The check and the insert run as one statement, so
// no explicit transaction is needed.
//
// Supported connections: pgxpool (optionally with a read replica), database/sql with
// lib/pq, and sqlx.
//
//	db, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		db,
//		postgresengine.WithTableName("circulation_events"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//	_ = store.EnsureSchema(ctx)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvents...)
package postgresengine
