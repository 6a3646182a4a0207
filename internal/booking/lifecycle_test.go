package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func newBooking(status Status) *Booking {
	return &Booking{
		ID:          "b1",
		CustomerID:  "c1",
		CarID:       "car1",
		StartDate:   date(2025, 1, 10),
		EndDate:     date(2025, 1, 15),
		DailyRate:   1000,
		TotalAmount: 5000,
		Status:      status,
	}
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int64
	}{
		{"exact days", date(2025, 1, 10), date(2025, 1, 15), 5},
		{"partial day rounds up", date(2025, 1, 10), date(2025, 1, 10).Add(25 * time.Hour), 2},
		{"few hours is one day", date(2025, 1, 10), date(2025, 1, 10).Add(3 * time.Hour), 1},
		{"non positive is one day", date(2025, 1, 10), date(2025, 1, 9), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RentalDays(tt.start, tt.end))
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusInProgress.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"pending":     StatusPending,
		"Confirmed":   StatusConfirmed,
		"ongoing":     StatusInProgress,
		"In-Progress": StatusInProgress,
		"in progress": StatusInProgress,
		"in_progress": StatusInProgress,
		" Completed ": StatusCompleted,
		"Cancelled":   StatusCancelled,
		"canceled":    StatusCancelled,
	}
	for in, want := range tests {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	var s Status
	require.NoError(t, s.Scan([]byte("Ongoing")))
	assert.Equal(t, StatusInProgress, s)
	assert.Error(t, s.Scan(42))
}

func TestForwardLifecycle(t *testing.T) {
	now := date(2025, 1, 10)
	b := newBooking(StatusPending)

	require.NoError(t, b.Confirm())
	assert.ErrorIs(t, b.Return(now), ErrInvalidState)

	require.NoError(t, b.Release(now))
	assert.True(t, b.IsReleased())
	assert.Equal(t, StatusInProgress, b.Status)

	require.NoError(t, b.Return(now.Add(time.Hour)))
	assert.True(t, b.IsReturned())
	assert.Equal(t, StatusCompleted, b.Status)

	assert.ErrorIs(t, b.Confirm(), ErrInvalidState)
	assert.ErrorIs(t, b.AssignDriver("d1"), ErrInvalidState)
}

func TestRequestCancellationRejectsSecondCall(t *testing.T) {
	b := newBooking(StatusConfirmed)

	require.NoError(t, b.RequestCancellation())
	assert.True(t, b.IsCancel)
	assert.Equal(t, StatusConfirmed, b.Status)

	assert.ErrorIs(t, b.RequestCancellation(), ErrAlreadyPending)
}

func TestCancellationFlow(t *testing.T) {
	t.Run("approve cancels", func(t *testing.T) {
		b := newBooking(StatusPending)
		require.NoError(t, b.RequestCancellation())
		require.NoError(t, b.ApproveCancellation())
		assert.Equal(t, StatusCancelled, b.Status)
		assert.False(t, b.IsCancel)
	})

	t.Run("withdraw keeps status", func(t *testing.T) {
		b := newBooking(StatusConfirmed)
		require.NoError(t, b.RequestCancellation())
		require.NoError(t, b.WithdrawCancellation())
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.False(t, b.IsCancel)

		// can ask again after withdrawing
		require.NoError(t, b.RequestCancellation())
	})

	t.Run("reject keeps status", func(t *testing.T) {
		b := newBooking(StatusPending)
		require.NoError(t, b.RequestCancellation())
		require.NoError(t, b.RejectCancellation())
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("not allowed once the car is out", func(t *testing.T) {
		for _, st := range []Status{StatusInProgress, StatusCompleted, StatusCancelled} {
			b := newBooking(st)
			assert.ErrorIs(t, b.RequestCancellation(), ErrInvalidState, st)
		}
	})

	t.Run("approve without request", func(t *testing.T) {
		b := newBooking(StatusPending)
		assert.ErrorIs(t, b.ApproveCancellation(), ErrNoPendingRequest)
		assert.ErrorIs(t, b.WithdrawCancellation(), ErrNoPendingRequest)
	})

	t.Run("pending cancellation blocks confirm and release", func(t *testing.T) {
		b := newBooking(StatusPending)
		require.NoError(t, b.RequestCancellation())
		assert.ErrorIs(t, b.Confirm(), ErrConflictingRequest)

		b = newBooking(StatusConfirmed)
		require.NoError(t, b.RequestCancellation())
		assert.ErrorIs(t, b.Release(date(2025, 1, 10)), ErrConflictingRequest)
	})
}

func TestExtensionPricingAndApproval(t *testing.T) {
	now := date(2025, 1, 12)
	b := newBooking(StatusInProgress)

	cost, err := b.RequestExtension(date(2025, 1, 20), now, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(5*1000), cost)
	assert.True(t, b.IsExtend)
	require.NotNil(t, b.ExtensionDeadline)
	assert.Equal(t, now.Add(24*time.Hour), *b.ExtensionDeadline)

	// dates and total are untouched until approval
	assert.Equal(t, date(2025, 1, 15), b.EndDate)
	assert.Equal(t, int64(5000), b.TotalAmount)

	require.NoError(t, b.ApproveExtension())
	assert.Equal(t, date(2025, 1, 20), b.EndDate)
	assert.Equal(t, int64(10000), b.TotalAmount)
	assert.False(t, b.IsExtend)
	assert.Nil(t, b.NewEndDate)
	assert.Zero(t, b.ExtensionCost)
}

func TestExtensionWithdrawRestoresBooking(t *testing.T) {
	b := newBooking(StatusInProgress)
	before := *b

	_, err := b.RequestExtension(date(2025, 1, 18), date(2025, 1, 12), time.Hour)
	require.NoError(t, err)
	require.NoError(t, b.WithdrawExtension())

	assert.Equal(t, before, *b)
}

func TestExtensionErrors(t *testing.T) {
	now := date(2025, 1, 12)

	t.Run("new end not after end", func(t *testing.T) {
		b := newBooking(StatusInProgress)
		_, err := b.RequestExtension(date(2025, 1, 15), now, time.Hour)
		assert.ErrorIs(t, err, ErrInvalidDate)
		_, err = b.RequestExtension(date(2025, 1, 14), now, time.Hour)
		assert.ErrorIs(t, err, ErrInvalidDate)
		assert.False(t, b.IsExtend)
	})

	t.Run("only while in progress", func(t *testing.T) {
		for _, st := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
			b := newBooking(st)
			_, err := b.RequestExtension(date(2025, 1, 20), now, time.Hour)
			assert.ErrorIs(t, err, ErrInvalidState, st)
		}
	})

	t.Run("already pending", func(t *testing.T) {
		b := newBooking(StatusInProgress)
		_, err := b.RequestExtension(date(2025, 1, 20), now, time.Hour)
		require.NoError(t, err)
		_, err = b.RequestExtension(date(2025, 1, 22), now, time.Hour)
		assert.ErrorIs(t, err, ErrAlreadyPending)
	})

	t.Run("return refused while extension pending", func(t *testing.T) {
		b := newBooking(StatusInProgress)
		_, err := b.RequestExtension(date(2025, 1, 20), now, time.Hour)
		require.NoError(t, err)
		assert.ErrorIs(t, b.Return(now), ErrConflictingRequest)
	})

	t.Run("no pending request", func(t *testing.T) {
		b := newBooking(StatusInProgress)
		assert.ErrorIs(t, b.ApproveExtension(), ErrNoPendingRequest)
		assert.ErrorIs(t, b.RejectExtension(), ErrNoPendingRequest)
	})

	t.Run("overdue", func(t *testing.T) {
		b := newBooking(StatusInProgress)
		_, err := b.RequestExtension(date(2025, 1, 20), now, time.Hour)
		require.NoError(t, err)
		assert.False(t, b.ExtensionOverdue(now.Add(30*time.Minute)))
		assert.True(t, b.ExtensionOverdue(now.Add(2*time.Hour)))
	})
}

func TestPendingFlagsAreExclusive(t *testing.T) {
	// A pending cancellation on an in-progress booking can only come from stale data.
	b := newBooking(StatusInProgress)
	b.IsCancel = true
	_, err := b.RequestExtension(date(2025, 1, 20), date(2025, 1, 12), time.Hour)
	assert.ErrorIs(t, err, ErrConflictingRequest)

	b = newBooking(StatusConfirmed)
	b.IsExtend = true
	assert.ErrorIs(t, b.RequestCancellation(), ErrConflictingRequest)
}

func TestPaymentFlag(t *testing.T) {
	b := newBooking(StatusConfirmed)
	b.MarkPaymentSubmitted()
	assert.True(t, b.IsPay)

	// payment verification does not block other requests
	require.NoError(t, b.RequestCancellation())

	b.ClearPaymentFlag()
	assert.False(t, b.IsPay)
}
