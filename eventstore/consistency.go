package eventstore

import "context"

// ConsistencyLevel tells an engine whether a Query may be served from a replica.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Command handlers use it for their
	// read-decide-append cycle. It is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica. Sweep candidate queries and
	// read models use it.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level.
const ConsistencyLevelKey contextKey = "eventstore.consistency_level"

// WithStrongConsistency returns a context that forces reads from the primary.
//
//	ctx = eventstore.WithStrongConsistency(ctx)
//	events, maxSeq, err := eventStore.Query(ctx, filter)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows reads from a replica.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel returns the level stored in ctx, StrongConsistency if none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
