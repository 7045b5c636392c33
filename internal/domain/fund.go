package domain

import (
	"fmt"
	"time"
)

// Allocatable is the ledger shape shared by projects (sinks of funds) and
// donations (sources of funds). Amount is the required sum for a project and
// the contributed sum for a donation.
type Allocatable struct {
	ID              string
	Amount          int64
	AllocatedAmount int64
	Closed          bool
	CreatedAt       time.Time
	ClosedAt        *time.Time
}

// NewAllocatable returns an open record with nothing allocated yet.
func NewAllocatable(id string, amount int64, createdAt time.Time) Allocatable {
	return Allocatable{ID: id, Amount: amount, CreatedAt: createdAt}
}

// Remaining reports how much can still be allocated to or from the record.
func (a Allocatable) Remaining() int64 {
	return a.Amount - a.AllocatedAmount
}

// Close marks a fully allocated record as closed. Closing twice keeps the
// first ClosedAt.
func (a *Allocatable) Close(now time.Time) error {
	if a.Closed {
		return nil
	}
	if rem := a.Remaining(); rem != 0 {
		return fmt.Errorf("%w: %s still has %d unallocated", ErrInvalidState, a.ID, rem)
	}
	closedAt := now
	a.Closed = true
	a.ClosedAt = &closedAt
	return nil
}

// Project is a fundraising target.
type Project struct {
	Allocatable
	Name        string
	Description string
}

// Donation is a user contribution that funds projects.
type Donation struct {
	Allocatable
	UserID  string
	Comment string
}
