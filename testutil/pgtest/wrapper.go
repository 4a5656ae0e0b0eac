// Package pgtest opens a Postgres event store for integration tests.
//
// Tests run only when CIRCULATION_TEST_DSN is set. ADAPTER_TYPE selects the database
// adapter (pgx.pool, sql.db or sqlx.db; pgx.pool when empty). Every call gets its own
// events table, dropped again on cleanup.
package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell/config"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore/postgresengine"
)

const (
	DSNEnv     = "CIRCULATION_TEST_DSN"
	AdapterEnv = "ADAPTER_TYPE"

	setupTimeout = 10 * time.Second
)

// wrapper abstracts over the database handles behind the event store.
type wrapper interface {
	EventStore() postgresengine.EventStore
	dropTable(ctx context.Context, table string) error
	close()
}

type pgxPoolWrapper struct {
	pool *pgxpool.Pool
	es   postgresengine.EventStore
}

func (w *pgxPoolWrapper) EventStore() postgresengine.EventStore { return w.es }

func (w *pgxPoolWrapper) dropTable(ctx context.Context, table string) error {
	_, err := w.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
	return err
}

func (w *pgxPoolWrapper) close() { w.pool.Close() }

type sqlDBWrapper struct {
	db *sql.DB
	es postgresengine.EventStore
}

func (w *sqlDBWrapper) EventStore() postgresengine.EventStore { return w.es }

func (w *sqlDBWrapper) dropTable(ctx context.Context, table string) error {
	_, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)
	return err
}

func (w *sqlDBWrapper) close() { _ = w.db.Close() }

type sqlxWrapper struct {
	db *sqlx.DB
	es postgresengine.EventStore
}

func (w *sqlxWrapper) EventStore() postgresengine.EventStore { return w.es }

func (w *sqlxWrapper) dropTable(ctx context.Context, table string) error {
	_, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)
	return err
}

func (w *sqlxWrapper) close() { _ = w.db.Close() }

// NewEventStore opens the event store on a fresh table or skips the test.
func NewEventStore(t *testing.T) (postgresengine.EventStore, context.Context) {
	t.Helper()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", DSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	t.Cleanup(cancel)

	pg := config.PostgresConfig{
		DSN:       dsn,
		Adapter:   adapterFromEnv(),
		TableName: fmt.Sprintf("events_test_%d", time.Now().UnixNano()),
	}
	require.NoError(t, pg.Validate())

	w := open(ctx, t, pg)
	require.NoError(t, w.EventStore().EnsureSchema(ctx))

	t.Cleanup(func() {
		_ = w.dropTable(context.Background(), pg.TableName)
		w.close()
	})

	return w.EventStore(), ctx
}

func adapterFromEnv() string {
	if adapter := strings.ToLower(os.Getenv(AdapterEnv)); adapter != "" {
		return adapter
	}

	return config.AdapterPGXPool
}

func open(ctx context.Context, t *testing.T, pg config.PostgresConfig) wrapper {
	t.Helper()

	opts := []postgresengine.Option{postgresengine.WithTableName(pg.TableName)}

	switch pg.Adapter {
	case config.AdapterSQLDB:
		db, err := pg.OpenSQLDB(ctx)
		require.NoError(t, err, "error connecting to DB in test setup")

		es, err := postgresengine.NewEventStoreFromSQLDB(db, opts...)
		require.NoError(t, err, "error creating event store")

		return &sqlDBWrapper{db: db, es: es}

	case config.AdapterSQLX:
		db, err := pg.OpenSQLX(ctx)
		require.NoError(t, err, "error connecting to DB in test setup")

		es, err := postgresengine.NewEventStoreFromSQLX(db, opts...)
		require.NoError(t, err, "error creating event store")

		return &sqlxWrapper{db: db, es: es}

	default:
		pool, err := pg.OpenPGXPool(ctx)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		es, err := postgresengine.NewEventStoreFromPGXPool(pool, opts...)
		require.NoError(t, err, "error creating event store")

		return &pgxPoolWrapper{pool: pool, es: es}
	}
}
