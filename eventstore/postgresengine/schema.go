package postgresengine

import (
	"context"
	"fmt"
)

// EnsureSchema creates the events table and its indexes if they do not exist yet.
// The containment index on payload serves the predicate part of every Filter.
func (es EventStore) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	sequence_number BIGSERIAL PRIMARY KEY,
	event_type TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_event_type ON %[1]s (event_type);
CREATE INDEX IF NOT EXISTS idx_%[1]s_payload ON %[1]s USING GIN (payload jsonb_path_ops);`,
		es.eventTableName,
	)

	if _, err := es.db.Exec(ctx, stmt); err != nil {
		es.logError("ensure schema failed", logAttrError, err.Error())

		return fmt.Errorf("ensure schema: %w", err)
	}

	return nil
}
