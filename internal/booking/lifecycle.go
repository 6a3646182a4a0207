package booking

import (
	"time"
)

const day = 24 * time.Hour

// RentalDays counts started 24 hour periods between start and end, at least one.
func RentalDays(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 1
	}
	days := int64(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

// The methods below only mutate the in-memory booking. Callers persist the result
// while holding the row lock.

// Confirm accepts a pending booking.
func (b *Booking) Confirm() error {
	if b.IsCancel {
		return ErrConflictingRequest
	}
	return b.transition(StatusConfirmed)
}

// Release hands the car over to the customer.
func (b *Booking) Release(now time.Time) error {
	if b.IsCancel {
		return ErrConflictingRequest
	}
	if err := b.transition(StatusInProgress); err != nil {
		return err
	}
	b.PickedUpAt = &now
	return nil
}

// Return records the car coming back. A pending extension must be settled first.
func (b *Booking) Return(now time.Time) error {
	if b.IsExtend {
		return ErrConflictingRequest
	}
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	b.ReturnedAt = &now
	return nil
}

// RequestCancellation flags the booking for cancellation without changing its status.
func (b *Booking) RequestCancellation() error {
	if b.IsCancel {
		return ErrAlreadyPending
	}
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if b.IsExtend {
		return ErrConflictingRequest
	}
	b.IsCancel = true
	return nil
}

// ApproveCancellation cancels a booking whose customer asked for it.
func (b *Booking) ApproveCancellation() error {
	if !b.IsCancel {
		return ErrNoPendingRequest
	}
	if err := b.transition(StatusCancelled); err != nil {
		return err
	}
	b.IsCancel = false
	return nil
}

// WithdrawCancellation is the customer taking the request back.
func (b *Booking) WithdrawCancellation() error {
	if !b.IsCancel {
		return ErrNoPendingRequest
	}
	b.IsCancel = false
	return nil
}

// RejectCancellation is staff declining the request. The booking stays as it was.
func (b *Booking) RejectCancellation() error {
	return b.WithdrawCancellation()
}

// RequestExtension stages a later end date and prices the extra days at the booked rate.
// The customer has until now+window to settle it. It returns the additional cost.
func (b *Booking) RequestExtension(newEnd, now time.Time, window time.Duration) (int64, error) {
	if b.IsExtend {
		return 0, ErrAlreadyPending
	}
	if b.Status != StatusInProgress {
		return 0, ErrInvalidState
	}
	if b.IsCancel {
		return 0, ErrConflictingRequest
	}
	if !newEnd.After(b.EndDate) {
		return 0, ErrInvalidDate
	}

	cost := b.DailyRate * RentalDays(b.EndDate, newEnd)
	deadline := now.Add(window)

	b.IsExtend = true
	b.NewEndDate = &newEnd
	b.ExtensionCost = cost
	b.ExtensionDeadline = &deadline
	return cost, nil
}

// ApproveExtension applies the staged end date and cost in one step.
func (b *Booking) ApproveExtension() error {
	if !b.IsExtend || b.NewEndDate == nil {
		return ErrNoPendingRequest
	}
	if b.Status != StatusInProgress {
		return ErrInvalidState
	}
	b.EndDate = *b.NewEndDate
	b.TotalAmount += b.ExtensionCost
	b.clearExtension()
	return nil
}

// WithdrawExtension drops the staged extension, leaving dates and total untouched.
func (b *Booking) WithdrawExtension() error {
	if !b.IsExtend {
		return ErrNoPendingRequest
	}
	b.clearExtension()
	return nil
}

// RejectExtension is staff declining the extension.
func (b *Booking) RejectExtension() error {
	return b.WithdrawExtension()
}

// ExtensionOverdue reports whether a pending extension has passed its payment deadline.
func (b *Booking) ExtensionOverdue(now time.Time) bool {
	return b.IsExtend && b.ExtensionDeadline != nil && now.After(*b.ExtensionDeadline)
}

// MarkPaymentSubmitted flags a customer payment awaiting verification.
func (b *Booking) MarkPaymentSubmitted() {
	b.IsPay = true
}

// ClearPaymentFlag is called once staff confirmed or rejected the submitted payments.
func (b *Booking) ClearPaymentFlag() {
	b.IsPay = false
}

// AssignDriver sets or replaces the driver on a booking that is still open.
func (b *Booking) AssignDriver(driverID string) error {
	if b.Status.IsTerminal() {
		return ErrInvalidState
	}
	b.DriverID = &driverID
	b.WithDriver = true
	return nil
}

func (b *Booking) transition(to Status) error {
	if !b.Status.CanTransitionTo(to) {
		return ErrInvalidState
	}
	b.Status = to
	return nil
}

func (b *Booking) clearExtension() {
	b.IsExtend = false
	b.NewEndDate = nil
	b.ExtensionCost = 0
	b.ExtensionDeadline = nil
}
