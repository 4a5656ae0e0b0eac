// Package adapters lets the Postgres event store run on a pgx pool, a *sql.DB or a *sqlx.DB
// behind one DBAdapter interface.
package adapters
