package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
)

// ErrGatewayFailure is returned when the gateway cannot be reached or rejects a call.
var ErrGatewayFailure = errors.New("payment gateway failure")

// Gateway is the part of the payment provider the engine uses.
type Gateway interface {
	ChargeFine(ctx context.Context, charge FineCharge) (Receipt, error)
	ChargeDigitalExtension(ctx context.Context, charge ExtensionCharge) (Receipt, error)
	TransactionSettled(ctx context.Context, transactionRef string) (bool, error)
}

// FineCharge charges a patron for one fine. The fine id is the idempotency key.
type FineCharge struct {
	FineID   core.FineIDString
	PatronID core.PatronIDString
	Amount   core.Money
}

func (c FineCharge) IdempotencyKey() string {
	return "fine/" + c.FineID
}

// ExtensionCharge charges the fee of one digital borrow extension.
// Borrow id and extension number form the idempotency key.
type ExtensionCharge struct {
	BorrowID        core.BorrowIDString
	PatronID        core.PatronIDString
	ExtensionNumber int
	Amount          core.Money
}

func (c ExtensionCharge) IdempotencyKey() string {
	return fmt.Sprintf("digital-extension/%s/%d", c.BorrowID, c.ExtensionNumber)
}

// Receipt identifies a completed charge.
type Receipt struct {
	TransactionRef string
}
