package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEligibility is returned when a patron may not perform an operation (limits, suspension, card).
	ErrEligibility = errors.New("eligibility error")

	// ErrInventoryViolation is returned when a counter would go negative or the ledger invariant breaks.
	// It always indicates a programming or data integrity bug.
	ErrInventoryViolation = errors.New("inventory violation")

	// ErrNotFound is returned for unknown or archived items, unknown patrons, requests, loans, ...
	ErrNotFound = errors.New("not found")

	// ErrStateConflict is returned when an operation is invalid for the current state.
	ErrStateConflict = errors.New("state conflict")

	// ErrReservationConflict is returned when a reservation of another patron blocks the operation.
	ErrReservationConflict = errors.New("reservation conflict")

	// ErrPolicyResolution is returned when no fine policy, tier or condition grade applies.
	ErrPolicyResolution = errors.New("policy resolution error")

	// ErrExternalDependency is returned when persistence, payment or another collaborator fails.
	ErrExternalDependency = errors.New("external dependency error")
)

// Error kinds as exposed to callers of the use-cases.
const (
	KindEligibility         = "eligibility"
	KindInventoryViolation  = "inventory_violation"
	KindNotFound            = "not_found"
	KindStateConflict       = "state_conflict"
	KindReservationConflict = "reservation_conflict"
	KindPolicyResolution    = "policy_resolution"
	KindExternalDependency  = "external_dependency"
	KindUnknown             = "unknown"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInventoryViolation, KindInventoryViolation},
	{ErrPolicyResolution, KindPolicyResolution},
	{ErrReservationConflict, KindReservationConflict},
	{ErrEligibility, KindEligibility},
	{ErrNotFound, KindNotFound},
	{ErrStateConflict, KindStateConflict},
	{ErrExternalDependency, KindExternalDependency},
}

// KindOf returns the stable kind string of err, "" for nil.
func KindOf(err error) string {
	if err == nil {
		return ""
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindUnknown
}

// EligibilityError builds an ErrEligibility with a human-readable reason.
func EligibilityError(reason string) error {
	return fmt.Errorf("%w: %s", ErrEligibility, reason)
}

// NotFoundError builds an ErrNotFound with a human-readable reason.
func NotFoundError(reason string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, reason)
}

// StateConflictError builds an ErrStateConflict with a human-readable reason.
func StateConflictError(reason string) error {
	return fmt.Errorf("%w: %s", ErrStateConflict, reason)
}

// ReservationConflictError builds an ErrReservationConflict with a human-readable reason.
func ReservationConflictError(reason string) error {
	return fmt.Errorf("%w: %s", ErrReservationConflict, reason)
}

// PolicyResolutionError builds an ErrPolicyResolution with a human-readable reason.
func PolicyResolutionError(reason string) error {
	return fmt.Errorf("%w: %s", ErrPolicyResolution, reason)
}
