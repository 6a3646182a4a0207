package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrent/rental-backend/internal/pkg/apperror"
)

func paid(amounts ...int64) []*Payment {
	out := make([]*Payment, len(amounts))
	for i, a := range amounts {
		out[i] = &Payment{Amount: a, Status: StatusConfirmed}
	}
	return out
}

func TestDeriveBalance(t *testing.T) {
	payments := append(paid(1000, 500), &Payment{Amount: 300, Status: StatusPending}, &Payment{Amount: 9999, Status: StatusVoided})
	refunds := []*Refund{{Amount: 200}}

	assert.Equal(t, int64(5000-1800+200), DeriveBalance(5000, payments, refunds))
	assert.Equal(t, int64(5000), DeriveBalance(5000, nil, nil))
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, Paid, DerivePaymentStatus(0))
	assert.Equal(t, Paid, DerivePaymentStatus(-1))
	assert.Equal(t, Unpaid, DerivePaymentStatus(1))
}

func TestCheckPayment(t *testing.T) {
	s := Summarize("b", 5000, paid(1000), nil)
	require.Equal(t, int64(4000), s.Balance)

	assert.NoError(t, CheckPayment(s, 4000))
	assert.ErrorIs(t, CheckPayment(s, 0), ErrInvalidAmount)

	err := CheckPayment(s, 4001)
	require.ErrorIs(t, err, ErrOverpayment)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, OverpaymentDetails{Balance: 4000, Amount: 4001}, appErr.Details)
	// the sentinel itself stays detail free
	assert.Nil(t, ErrOverpayment.Details)
}

func TestSummaryStatusIgnoresPending(t *testing.T) {
	pending := []*Payment{{Amount: 5000, Status: StatusPending}}

	s := Summarize("b", 5000, pending, nil)
	assert.Equal(t, int64(0), s.Balance)
	assert.Equal(t, int64(0), s.Paid)
	assert.Equal(t, Unpaid, s.PaymentStatus)
	assert.ErrorIs(t, CheckPayment(s, 1), ErrOverpayment)
	assert.ErrorIs(t, CheckRefund(s, 1), ErrOverrefund)

	pending[0].Status = StatusConfirmed
	s = Summarize("b", 5000, pending, nil)
	assert.Equal(t, Paid, s.PaymentStatus)
}

func TestCheckVoid(t *testing.T) {
	assert.NoError(t, CheckVoid(Summarize("b", 5000, paid(1000), []*Refund{{Amount: 1000}})))
	assert.ErrorIs(t, CheckVoid(Summarize("b", 5000, nil, []*Refund{{Amount: 1}})), ErrOverrefund)
}

func TestCheckRefund(t *testing.T) {
	s := Summarize("b", 5000, paid(3000), []*Refund{{Amount: 1000}})

	assert.NoError(t, CheckRefund(s, 2000))
	err := CheckRefund(s, 2001)
	require.ErrorIs(t, err, ErrOverrefund)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, int64(2000), appErr.Details.(OverrefundDetails).Refundable)
}

func TestLedgerScenario(t *testing.T) {
	var payments []*Payment
	var refunds []*Refund
	const total = 5000

	record := func(amount int64) error {
		if err := CheckPayment(Summarize("b", total, payments, refunds), amount); err != nil {
			return err
		}
		payments = append(payments, &Payment{Amount: amount, Status: StatusConfirmed})
		return nil
	}
	refund := func(amount int64) error {
		if err := CheckRefund(Summarize("b", total, payments, refunds), amount); err != nil {
			return err
		}
		refunds = append(refunds, &Refund{Amount: amount})
		return nil
	}

	require.NoError(t, record(1000))
	s := Summarize("b", total, payments, refunds)
	assert.Equal(t, int64(4000), s.Balance)
	assert.Equal(t, Unpaid, s.PaymentStatus)

	assert.ErrorIs(t, record(4001), ErrOverpayment)

	require.NoError(t, record(4000))
	s = Summarize("b", total, payments, refunds)
	assert.Equal(t, int64(0), s.Balance)
	assert.Equal(t, Paid, s.PaymentStatus)

	assert.ErrorIs(t, refund(5001), ErrOverrefund)
	require.NoError(t, refund(2000))
	require.NoError(t, refund(3000))
	assert.ErrorIs(t, refund(1), ErrOverrefund)

	s = Summarize("b", total, payments, refunds)
	assert.Equal(t, int64(5000), s.Refunded)
	assert.Equal(t, int64(5000), s.Balance)
}

func TestParseHelpers(t *testing.T) {
	m, ok := ParseMethod(" GCash ")
	assert.True(t, ok)
	assert.Equal(t, MethodGCash, m)
	_, ok = ParseMethod("card")
	assert.False(t, ok)

	k, ok := ParseRefundKind("Security-Deposit")
	assert.True(t, ok)
	assert.Equal(t, RefundSecurityDeposit, k)
	_, ok = ParseRefundKind("25%")
	assert.False(t, ok)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", formatAmount(0))
	assert.Equal(t, "999", formatAmount(999))
	assert.Equal(t, "1,000", formatAmount(1000))
	assert.Equal(t, "12,500", formatAmount(12500))
	assert.Equal(t, "-1,234,567", formatAmount(-1234567))
}
