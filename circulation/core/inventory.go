package core

import (
	"fmt"
)

// Bucket is one of the logical inventory buckets of an item. BucketNone stands for
// "outside of circulation": units are received from it and written off to it.
type Bucket string

const (
	BucketNone      Bucket = ""
	BucketAvailable Bucket = "available"
	BucketRequested Bucket = "requested"
	BucketBorrowed  Bucket = "borrowed"
	BucketReserved  Bucket = "reserved"
)

// Movement moves Units from one bucket to another. The zero Movement moves nothing.
type Movement struct {
	From  Bucket
	To    Bucket
	Units int
}

// NoMovement is the Movement of events that do not touch the counters.
func NoMovement() Movement {
	return Movement{}
}

// Move builds a Movement of one unit.
func Move(from Bucket, to Bucket) Movement {
	return Movement{From: from, To: to, Units: 1}
}

// IsZero reports whether the movement moves nothing.
func (m Movement) IsZero() bool {
	return m.Units == 0
}

// Inventory holds the unit counters of one item.
//
// All operations return a new Inventory and leave the receiver unchanged. They fail with
// ErrInventoryViolation if a counter would go negative or total would no longer equal
// available + requested + borrowed + reserved.
type Inventory struct {
	total     int
	available int
	requested int
	borrowed  int
	reserved  int
}

func (inv Inventory) Total() int     { return inv.total }
func (inv Inventory) Available() int { return inv.available }
func (inv Inventory) Requested() int { return inv.requested }
func (inv Inventory) Borrowed() int  { return inv.borrowed }
func (inv Inventory) Reserved() int  { return inv.reserved }

// Count returns the counter of bucket b, or total for BucketNone.
func (inv Inventory) Count(b Bucket) int {
	switch b {
	case BucketAvailable:
		return inv.available
	case BucketRequested:
		return inv.requested
	case BucketBorrowed:
		return inv.borrowed
	case BucketReserved:
		return inv.reserved
	default:
		return inv.total
	}
}

// Reserve moves n units from available to requested.
func (inv Inventory) Reserve(n int) (Inventory, error) {
	return inv.Release(n, BucketAvailable, BucketRequested)
}

// Release moves n units from one bucket to another.
func (inv Inventory) Release(n int, from Bucket, to Bucket) (Inventory, error) {
	if n <= 0 {
		return inv, fmt.Errorf("%w: unit count must be positive, got %d", ErrInventoryViolation, n)
	}

	if from == to || !isCounted(from) || !isCounted(to) {
		return inv, fmt.Errorf("%w: invalid movement %q -> %q", ErrInventoryViolation, from, to)
	}

	next := inv
	next.add(from, -n)
	next.add(to, n)

	if err := next.Check(); err != nil {
		return inv, err
	}

	return next, nil
}

// Commit moves one unit from one bucket to another.
func (inv Inventory) Commit(from Bucket, to Bucket) (Inventory, error) {
	return inv.Release(1, from, to)
}

// Receive adds n new units to total and available.
func (inv Inventory) Receive(n int) (Inventory, error) {
	if n <= 0 {
		return inv, fmt.Errorf("%w: unit count must be positive, got %d", ErrInventoryViolation, n)
	}

	next := inv
	next.total += n
	next.available += n

	return next, next.Check()
}

// WriteOff removes one unit permanently: the from counter and total decrease.
func (inv Inventory) WriteOff(from Bucket) (Inventory, error) {
	if !isCounted(from) {
		return inv, fmt.Errorf("%w: cannot write off from %q", ErrInventoryViolation, from)
	}

	next := inv
	next.add(from, -1)
	next.total--

	if err := next.Check(); err != nil {
		return inv, err
	}

	return next, nil
}

// Apply dispatches a Movement to Receive, WriteOff, Reserve or Release.
func (inv Inventory) Apply(m Movement) (Inventory, error) {
	switch {
	case m.IsZero():
		return inv, nil

	case m.From == BucketNone:
		if m.To != BucketAvailable {
			return inv, fmt.Errorf("%w: units can only be received into %q", ErrInventoryViolation, BucketAvailable)
		}

		return inv.Receive(m.Units)

	case m.To == BucketNone:
		next := inv
		for range m.Units {
			var err error
			if next, err = next.WriteOff(m.From); err != nil {
				return inv, err
			}
		}

		return next, nil

	default:
		return inv.Release(m.Units, m.From, m.To)
	}
}

// Check verifies non-negativity and total = available + requested + borrowed + reserved.
func (inv Inventory) Check() error {
	for _, b := range []Bucket{BucketNone, BucketAvailable, BucketRequested, BucketBorrowed, BucketReserved} {
		if inv.Count(b) < 0 {
			name := string(b)
			if b == BucketNone {
				name = "total"
			}

			return fmt.Errorf("%w: %s counter would become negative", ErrInventoryViolation, name)
		}
	}

	if inv.total != inv.available+inv.requested+inv.borrowed+inv.reserved {
		return fmt.Errorf(
			"%w: total %d != available %d + requested %d + borrowed %d + reserved %d",
			ErrInventoryViolation, inv.total, inv.available, inv.requested, inv.borrowed, inv.reserved,
		)
	}

	return nil
}

func (inv *Inventory) add(b Bucket, n int) {
	switch b {
	case BucketAvailable:
		inv.available += n
	case BucketRequested:
		inv.requested += n
	case BucketBorrowed:
		inv.borrowed += n
	case BucketReserved:
		inv.reserved += n
	}
}

func isCounted(b Bucket) bool {
	switch b {
	case BucketAvailable, BucketRequested, BucketBorrowed, BucketReserved:
		return true
	default:
		return false
	}
}
