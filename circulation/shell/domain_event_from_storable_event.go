package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) { //nolint:gocyclo,funlen
	payload := storableEvent.PayloadJSON

	switch storableEvent.EventType {
	case core.ItemCopyAddedToCirculationEventType:
		return unmarshalPayload[core.ItemCopyAddedToCirculation](payload)
	case core.ItemCopyRemovedFromCirculationEventType:
		return unmarshalPayload[core.ItemCopyRemovedFromCirculation](payload)
	case core.ItemArchivedEventType:
		return unmarshalPayload[core.ItemArchived](payload)
	case core.PatronRegisteredEventType:
		return unmarshalPayload[core.PatronRegistered](payload)
	case core.LibraryCardDeactivatedEventType:
		return unmarshalPayload[core.LibraryCardDeactivated](payload)
	case core.PatronSuspendedEventType:
		return unmarshalPayload[core.PatronSuspended](payload)
	case core.PatronReinstatedEventType:
		return unmarshalPayload[core.PatronReinstated](payload)

	case core.BorrowRequestSubmittedEventType:
		return unmarshalPayload[core.BorrowRequestSubmitted](payload)
	case core.ItemRequestedEventType:
		return unmarshalPayload[core.ItemRequested](payload)
	case core.InstanceAssignedToRequestEventType:
		return unmarshalPayload[core.InstanceAssignedToRequest](payload)
	case core.BorrowRequestApprovedEventType:
		return unmarshalPayload[core.BorrowRequestApproved](payload)
	case core.BorrowRequestCancelledEventType:
		return unmarshalPayload[core.BorrowRequestCancelled](payload)
	case core.BorrowRequestExpiredEventType:
		return unmarshalPayload[core.BorrowRequestExpired](payload)
	case core.ItemRequestReleasedEventType:
		return unmarshalPayload[core.ItemRequestReleased](payload)
	case core.BorrowRequestFulfilledEventType:
		return unmarshalPayload[core.BorrowRequestFulfilled](payload)

	case core.ItemCheckedOutEventType:
		return unmarshalPayload[core.ItemCheckedOut](payload)
	case core.LoanExtendedEventType:
		return unmarshalPayload[core.LoanExtended](payload)
	case core.ItemReturnedEventType:
		return unmarshalPayload[core.ItemReturned](payload)
	case core.LoanMarkedOverdueEventType:
		return unmarshalPayload[core.LoanMarkedOverdue](payload)
	case core.LoanMarkedLostEventType:
		return unmarshalPayload[core.LoanMarkedLost](payload)

	case core.ReservationPlacedEventType:
		return unmarshalPayload[core.ReservationPlaced](payload)
	case core.ReservationAssignedEventType:
		return unmarshalPayload[core.ReservationAssigned](payload)
	case core.ReservationCollectedEventType:
		return unmarshalPayload[core.ReservationCollected](payload)
	case core.ReservationCancelledEventType:
		return unmarshalPayload[core.ReservationCancelled](payload)
	case core.ReservationPickupExpiredEventType:
		return unmarshalPayload[core.ReservationPickupExpired](payload)

	case core.FineAssessedEventType:
		return unmarshalPayload[core.FineAssessed](payload)
	case core.FinePaidEventType:
		return unmarshalPayload[core.FinePaid](payload)
	case core.FineExpiredEventType:
		return unmarshalPayload[core.FineExpired](payload)

	case core.DigitalBorrowRegisteredEventType:
		return unmarshalPayload[core.DigitalBorrowRegistered](payload)
	case core.DigitalBorrowExtendedEventType:
		return unmarshalPayload[core.DigitalBorrowExtended](payload)
	case core.DigitalBorrowReturnedEventType:
		return unmarshalPayload[core.DigitalBorrowReturned](payload)
	case core.DigitalBorrowExpiredEventType:
		return unmarshalPayload[core.DigitalBorrowExpired](payload)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalPayload[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var event E

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
