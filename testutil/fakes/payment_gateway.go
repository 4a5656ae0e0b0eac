package fakes

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/payment"
)

// PaymentGateway records charges and answers settlement checks from a fixed set.
// A charge with a known idempotency key returns the first receipt again.
type PaymentGateway struct {
	mu       sync.Mutex
	receipts map[string]payment.Receipt
	settled  map[string]bool
	charges  []string
	failWith error
}

func NewPaymentGateway(settledTransactions ...string) *PaymentGateway {
	g := &PaymentGateway{
		receipts: map[string]payment.Receipt{},
		settled:  map[string]bool{},
	}

	for _, ref := range settledTransactions {
		g.settled[ref] = true
	}

	return g
}

// FailWith makes every following call fail with err; nil restores normal operation.
func (g *PaymentGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failWith = err
}

// Charges returns the idempotency keys of all charges, repeated ones included.
func (g *PaymentGateway) Charges() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.charges...)
}

func (g *PaymentGateway) ChargeFine(_ context.Context, charge payment.FineCharge) (payment.Receipt, error) {
	return g.charge(charge.IdempotencyKey())
}

func (g *PaymentGateway) ChargeDigitalExtension(_ context.Context, charge payment.ExtensionCharge) (payment.Receipt, error) {
	return g.charge(charge.IdempotencyKey())
}

func (g *PaymentGateway) TransactionSettled(_ context.Context, transactionRef string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failWith != nil {
		return false, g.failWith
	}

	return g.settled[transactionRef], nil
}

func (g *PaymentGateway) charge(key string) (payment.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failWith != nil {
		return payment.Receipt{}, g.failWith
	}

	g.charges = append(g.charges, key)

	if receipt, ok := g.receipts[key]; ok {
		return receipt, nil
	}

	receipt := payment.Receipt{TransactionRef: "tx/" + key}
	g.receipts[key] = receipt

	return receipt, nil
}
