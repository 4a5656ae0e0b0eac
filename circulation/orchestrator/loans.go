package orchestrator

import (
	"context"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/advanceoverdueloan"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/checkoutrequest"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/collectreservation"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/extendborrow"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/returnitem"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/features/command/selfcheckout"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

// CheckoutInput selects one of the three ways to hand copies to a patron.
// Exactly one of RequestID, ReservationCode or PatronID with Copies must be set.
type CheckoutInput struct {
	RequestID       core.RequestIDString
	ReservationCode string
	PatronID        core.PatronIDString
	Copies          []selfcheckout.Copy
}

// FromRequest checks out the copies assigned to an approved request.
func FromRequest(requestID core.RequestIDString) CheckoutInput {
	return CheckoutInput{RequestID: requestID}
}

// FromReservation checks out the copy of an assigned reservation.
func FromReservation(reservationCode string) CheckoutInput {
	return CheckoutInput{ReservationCode: reservationCode}
}

// FromShelf checks out copies the patron took from the shelf.
func FromShelf(patronID core.PatronIDString, copies ...selfcheckout.Copy) CheckoutInput {
	return CheckoutInput{PatronID: patronID, Copies: copies}
}

// LoanRef describes one copy on loan.
type LoanRef struct {
	DetailID   core.DetailIDString
	PatronID   core.PatronIDString
	ItemID     core.ItemIDString
	InstanceID core.InstanceIDString
	DueDate    time.Time
}

// CheckoutResult is the outcome of Checkout.
type CheckoutResult struct {
	RecordID core.RecordIDString
	Loans    []LoanRef
}

// Checkout hands copies to a patron and creates one loan per copy.
func (o *Orchestrator) Checkout(ctx context.Context, input CheckoutInput) (CheckoutResult, error) {
	ctx = withCorrelation(ctx)
	recordID := o.ids.NewID()
	now := o.now()

	var (
		commandType string
		handle      func(ctx context.Context) (shell.HandlerResult, error)
	)

	switch {
	case input.RequestID != "" && input.ReservationCode == "" && len(input.Copies) == 0:
		command := checkoutrequest.BuildCommand(input.RequestID, recordID, now)
		handler := checkoutrequest.NewCommandHandler(o.eventStore, o.policy, checkoutrequest.WithRetryOptions(o.retryOptions...))
		commandType = command.CommandType()
		handle = func(ctx context.Context) (shell.HandlerResult, error) { return handler.Handle(ctx, command) }

	case input.ReservationCode != "" && input.RequestID == "" && len(input.Copies) == 0:
		command := collectreservation.BuildCommand(input.ReservationCode, recordID, now)
		handler := collectreservation.NewCommandHandler(o.eventStore, o.policy, collectreservation.WithRetryOptions(o.retryOptions...))
		commandType = command.CommandType()
		handle = func(ctx context.Context) (shell.HandlerResult, error) { return handler.Handle(ctx, command) }

	case input.PatronID != "" && input.RequestID == "" && input.ReservationCode == "":
		command := selfcheckout.BuildCommand(input.PatronID, recordID, input.Copies, now)
		handler := selfcheckout.NewCommandHandler(o.eventStore, o.policy, selfcheckout.WithRetryOptions(o.retryOptions...))
		commandType = command.CommandType()
		handle = func(ctx context.Context) (shell.HandlerResult, error) { return handler.Handle(ctx, command) }

	default:
		return CheckoutResult{}, core.StateConflictError("checkout needs exactly one of request, reservation code or shelf copies")
	}

	result, err := o.execute(ctx, commandType, handle)
	if err != nil {
		return CheckoutResult{}, err
	}

	out := CheckoutResult{RecordID: recordID}

	for _, event := range result.Events {
		if _, ok := event.(core.ReservationCollected); ok {
			o.releaseCode(ctx, input.ReservationCode)
		}

		if e, ok := event.(core.ItemCheckedOut); ok {
			out.Loans = append(out.Loans, LoanRef{
				DetailID:   e.DetailID,
				PatronID:   e.PatronID,
				ItemID:     e.ItemID,
				InstanceID: e.InstanceID,
				DueDate:    e.DueDate,
			})
		}
	}

	return out, nil
}

// FineRef describes a fine created by a use-case.
type FineRef struct {
	FineID core.FineIDString
	Kind   core.FineKind
	Amount core.Money
}

// ReturnItemResult is the outcome of ReturnItem.
type ReturnItemResult struct {
	DetailID     core.DetailIDString
	ReturnedLate bool
	WrittenOff   bool
	Fines        []FineRef
	HandedOver   *ReservationRef
	Idempotent   bool
}

// ReturnItem ends a loan. A usable copy goes straight to the head of the item's queue if
// somebody waits; late returns and damage are fined.
func (o *Orchestrator) ReturnItem(
	ctx context.Context,
	detailID core.DetailIDString,
	returnCondition string,
	conditionImages []string,
) (ReturnItemResult, error) {

	ctx = withCorrelation(ctx)

	code := o.codeIfAvailable(ctx)

	command := returnitem.BuildCommand(detailID, returnCondition, conditionImages, code, o.now())
	handler := returnitem.NewCommandHandler(o.eventStore, o.policy, returnitem.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	o.releaseUnusedCode(ctx, code, result.Events)

	if err != nil {
		return ReturnItemResult{}, err
	}

	out := ReturnItemResult{DetailID: detailID, Idempotent: result.Idempotent, Fines: finesIn(result.Events)}

	for _, event := range result.Events {
		if e, ok := event.(core.ItemReturned); ok {
			out.ReturnedLate = e.ReturnedLate
			out.WrittenOff = e.Movement.To == core.BucketNone
		}
	}

	if next, ok := assignmentIn(result.Events); ok {
		out.HandedOver = &next
	}

	return out, nil
}

// ExtendBorrowResult is the outcome of ExtendBorrow.
type ExtendBorrowResult struct {
	DetailID        core.DetailIDString
	ExtensionNumber int
	NewDueDate      time.Time
}

// ExtendBorrow moves the due date of a loan by one extension period.
func (o *Orchestrator) ExtendBorrow(ctx context.Context, detailID core.DetailIDString) (ExtendBorrowResult, error) {
	ctx = withCorrelation(ctx)
	command := extendborrow.BuildCommand(detailID, o.now())
	handler := extendborrow.NewCommandHandler(o.eventStore, o.policy, extendborrow.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return ExtendBorrowResult{}, err
	}

	out := ExtendBorrowResult{DetailID: detailID}

	for _, event := range result.Events {
		if e, ok := event.(core.LoanExtended); ok {
			out.ExtensionNumber = e.ExtensionNumber
			out.NewDueDate = e.NewDueDate
		}
	}

	return out, nil
}

// OverdueAdvanceResult is the outcome of advancing one loan.
type OverdueAdvanceResult struct {
	DetailID   core.DetailIDString
	Status     core.LoanStatus
	Fines      []FineRef
	Idempotent bool
}

// AdvanceOverdueLoan marks one loan Overdue or Lost as due. It is the per-candidate step of
// RunOverdueSweep.
func (o *Orchestrator) AdvanceOverdueLoan(ctx context.Context, detailID core.DetailIDString) (OverdueAdvanceResult, error) {
	ctx = withCorrelation(ctx)
	command := advanceoverdueloan.BuildCommand(detailID, o.now())
	handler := advanceoverdueloan.NewCommandHandler(o.eventStore, o.policy, advanceoverdueloan.WithRetryOptions(o.retryOptions...))

	result, err := o.execute(ctx, command.CommandType(), func(ctx context.Context) (shell.HandlerResult, error) {
		return handler.Handle(ctx, command)
	})
	if err != nil {
		return OverdueAdvanceResult{}, err
	}

	out := OverdueAdvanceResult{DetailID: detailID, Idempotent: result.Idempotent, Fines: finesIn(result.Events)}

	for _, event := range result.Events {
		switch event.(type) {
		case core.LoanMarkedOverdue:
			out.Status = core.LoanOverdue
		case core.LoanMarkedLost:
			out.Status = core.LoanLost
		}
	}

	return out, nil
}

func finesIn(events core.DomainEvents) []FineRef {
	var fines []FineRef

	for _, event := range events {
		if e, ok := event.(core.FineAssessed); ok {
			fines = append(fines, FineRef{FineID: e.FineID, Kind: e.Kind, Amount: e.Amount})
		}
	}

	return fines
}
