// Package memengine provides an in-process implementation of the event store.
//
// It has the same Query/Append contract as the Postgres engine, including the
// concurrency check on Append, and is used by tests and the single-process CLI mode.
package memengine

import (
	"context"
	"errors"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

// ErrDecodingPayloadFailed is returned when an appended payload is not a JSON object.
var ErrDecodingPayloadFailed = errors.New("decoding payload failed")

const (
	logMsgQueryCompleted      = "eventstore operation: query completed"
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logAttrEventCount         = "event_count"
	logAttrExpectedSequence   = "expected_sequence"
	logAttrActualSequence     = "actual_sequence"
)

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore)

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) {
		es.logger = logger
	}
}

type storedEvent struct {
	sequenceNumber eventstore.MaxSequenceNumberUint
	event          eventstore.StorableEvent
	payload        map[string]any
}

// EventStore keeps all events in memory, ordered by sequence number.
type EventStore struct {
	mu     sync.RWMutex
	events []storedEvent
	logger eventstore.Logger
}

// NewEventStore creates an empty EventStore.
func NewEventStore(options ...Option) *EventStore {
	es := &EventStore{}

	for _, option := range options {
		option(es)
	}

	return es
}

// Ping always succeeds.
func (es *EventStore) Ping(context.Context) error {
	return nil
}

// Query returns all events matching the filter in sequence order, together with the
// sequence number of the last matching event.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	events, maxSeq := es.matching(filter)

	if es.logger != nil {
		es.logger.Info(logMsgQueryCompleted, logAttrEventCount, len(events))
	}

	return events, maxSeq, nil
}

// Append stores all events atomically if the sequence number of the last event matching
// the filter still equals expectedMaxSequenceNumber.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	events ...eventstore.StorableEvent,
) error {

	if len(events) == 0 {
		return eventstore.ErrNoEventsToAppend
	}

	if err := ctx.Err(); err != nil {
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	decoded := make([]map[string]any, 0, len(events))
	for _, event := range events {
		payload := make(map[string]any)
		if err := jsoniter.ConfigFastest.Unmarshal(event.PayloadJSON, &payload); err != nil {
			return errors.Join(eventstore.ErrAppendingEventFailed, ErrDecodingPayloadFailed, err)
		}

		decoded = append(decoded, payload)
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	_, actualMaxSeq := es.matching(filter)
	if actualMaxSeq != expectedMaxSequenceNumber {
		if es.logger != nil {
			es.logger.Info(
				logMsgConcurrencyConflict,
				logAttrExpectedSequence, expectedMaxSequenceNumber,
				logAttrActualSequence, actualMaxSeq,
			)
		}

		return eventstore.ErrConcurrencyConflict
	}

	next := eventstore.MaxSequenceNumberUint(len(es.events))
	for i, event := range events {
		next++
		es.events = append(es.events, storedEvent{sequenceNumber: next, event: event, payload: decoded[i]})
	}

	if es.logger != nil {
		es.logger.Info(logMsgEventsAppended, logAttrEventCount, len(events))
	}

	return nil
}

// matching must be called with the lock held.
func (es *EventStore) matching(filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint) {
	result := make(eventstore.StorableEvents, 0)
	maxSeq := eventstore.MaxSequenceNumberUint(0)

	for _, stored := range es.events {
		if !matchesFilter(filter, stored) {
			continue
		}

		result = append(result, stored.event)
		maxSeq = stored.sequenceNumber
	}

	return result, maxSeq
}

func matchesFilter(filter eventstore.Filter, stored storedEvent) bool {
	if len(filter.Items()) == 0 {
		return true
	}

	for _, item := range filter.Items() {
		if matchesItem(item, stored) {
			return true
		}
	}

	return false
}

func matchesItem(item eventstore.FilterItem, stored storedEvent) bool {
	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), stored.event.EventType) {
		return false
	}

	if len(item.Predicates()) == 0 {
		return true
	}

	if item.AllPredicatesMustMatch() {
		for _, predicate := range item.Predicates() {
			if !matchesPredicate(predicate, stored.payload) {
				return false
			}
		}

		return true
	}

	for _, predicate := range item.Predicates() {
		if matchesPredicate(predicate, stored.payload) {
			return true
		}
	}

	return false
}

func matchesPredicate(predicate eventstore.FilterPredicate, payload map[string]any) bool {
	val, ok := payload[predicate.Key()].(string)

	return ok && val == predicate.Val()
}
