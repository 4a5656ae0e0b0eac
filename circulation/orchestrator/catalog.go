package orchestrator

import (
	"context"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/addcopy"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/archiveitem"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/deactivatecard"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/registerpatron"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/reinstatepatron"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/removecopy"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/query/patronprofile"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// MaintenanceResult is the outcome of catalog and patron maintenance.
type MaintenanceResult struct {
	Idempotent bool
}

// AddItemCopy puts a new copy of an item into circulation. A copy that becomes available
// is offered to the item's queue right away.
func (o *Orchestrator) AddItemCopy(
	ctx context.Context,
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
	barcode string,
	conditionGrade string,
	estimatedPrice core.Money,
) (MaintenanceResult, error) {

	ctx = withCorrelation(ctx)
	command := addcopy.BuildCommand(itemID, instanceID, barcode, conditionGrade, estimatedPrice, o.now())
	handler := addcopy.NewCommandHandler(o.eventStore, o.policy, addcopy.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return MaintenanceResult{}, err
	}

	if !result.Idempotent {
		o.assignFreedUnits(ctx, []core.ItemIDString{itemID})
	}

	return MaintenanceResult{Idempotent: result.Idempotent}, nil
}

// RemoveItemCopy withdraws a shelf copy from circulation.
func (o *Orchestrator) RemoveItemCopy(
	ctx context.Context,
	itemID core.ItemIDString,
	instanceID core.InstanceIDString,
	reason string,
) (MaintenanceResult, error) {

	ctx = withCorrelation(ctx)
	command := removecopy.BuildCommand(itemID, instanceID, reason, o.now())
	handler := removecopy.NewCommandHandler(o.eventStore, removecopy.WithRetryOptions(o.retryOptions...))

	return o.maintain(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
}

// ArchiveItem takes an item out of the catalog. Archived items behave as not found.
func (o *Orchestrator) ArchiveItem(ctx context.Context, itemID core.ItemIDString, reason string) (MaintenanceResult, error) {
	ctx = withCorrelation(ctx)
	command := archiveitem.BuildCommand(itemID, reason, o.now())
	handler := archiveitem.NewCommandHandler(o.eventStore, archiveitem.WithRetryOptions(o.retryOptions...))

	return o.maintain(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
}

// RegisterPatron registers a patron with a preferred locale for notices.
func (o *Orchestrator) RegisterPatron(ctx context.Context, patronID core.PatronIDString, name string, locale string) (MaintenanceResult, error) {
	ctx = withCorrelation(ctx)
	command := registerpatron.BuildCommand(patronID, name, locale, o.now())
	handler := registerpatron.NewCommandHandler(o.eventStore, registerpatron.WithRetryOptions(o.retryOptions...))

	return o.maintain(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
}

// DeactivateLibraryCard blocks the patron from new requests, reservations and checkouts.
func (o *Orchestrator) DeactivateLibraryCard(ctx context.Context, patronID core.PatronIDString, reason string) (MaintenanceResult, error) {
	ctx = withCorrelation(ctx)
	command := deactivatecard.BuildCommand(patronID, reason, o.now())
	handler := deactivatecard.NewCommandHandler(o.eventStore, deactivatecard.WithRetryOptions(o.retryOptions...))

	return o.maintain(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
}

// ReinstatePatron lifts a suspension and resets the missed pickup count.
func (o *Orchestrator) ReinstatePatron(ctx context.Context, patronID core.PatronIDString) (MaintenanceResult, error) {
	ctx = withCorrelation(ctx)
	command := reinstatepatron.BuildCommand(patronID, o.now())
	handler := reinstatepatron.NewCommandHandler(o.eventStore, reinstatepatron.WithRetryOptions(o.retryOptions...))

	return o.maintain(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
}

// PatronProfile reports the standing and the open obligations of a patron.
func (o *Orchestrator) PatronProfile(ctx context.Context, patronID core.PatronIDString) (patronprofile.PatronProfile, error) {
	return o.profiles.Handle(ctx, patronprofile.BuildQuery(patronID))
}

func (o *Orchestrator) maintain(
	ctx context.Context,
	commandType string,
	handle func(ctx context.Context) (shell.HandlerResult, error),
) (MaintenanceResult, error) {

	result, err := o.execute(ctx, commandType, handle)
	if err != nil {
		return MaintenanceResult{}, err
	}

	return MaintenanceResult{Idempotent: result.Idempotent}, nil
}
