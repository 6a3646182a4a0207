package payment

import (
	"net/http"
	"strings"
	"time"

	"github.com/carrent/rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "payment not found")
	ErrBookingNotFound   = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidAmount     = apperror.New(http.StatusBadRequest, "amount must be greater than zero")
	ErrInvalidMethod     = apperror.New(http.StatusBadRequest, "payment method must be cash or gcash")
	ErrInvalidRefundKind = apperror.New(http.StatusBadRequest, "refund type must be 50%, 75%, 100% or security_deposit")
	ErrReferenceRequired = apperror.New(http.StatusBadRequest, "reference number is required for gcash payments")
	ErrOverpayment       = apperror.New(http.StatusBadRequest, "payment exceeds the outstanding balance")
	ErrOverrefund        = apperror.New(http.StatusBadRequest, "refund exceeds the amount paid")
	ErrBookingClosed     = apperror.New(http.StatusBadRequest, "booking no longer accepts payments")
	ErrNoPendingPayment  = apperror.New(http.StatusBadRequest, "no payment is awaiting confirmation")
	ErrCustomerMismatch  = apperror.New(http.StatusBadRequest, "customer does not match the booking")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
)

type Method string

const (
	MethodCash  Method = "cash"
	MethodGCash Method = "gcash"
)

// ParseMethod accepts the spellings clients send ("GCash", "CASH", ...).
func ParseMethod(s string) (Method, bool) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodCash, MethodGCash:
		return m, true
	}
	return "", false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusVoided    Status = "voided"
)

// Counts reports whether a payment in this status reduces the balance.
// Pending payments count so two submissions cannot both claim the same balance.
func (s Status) Counts() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Payment struct {
	ID          string
	BookingID   string
	CustomerID  string
	Amount      int64
	Method      Method
	ReferenceNo *string
	GCashNo     *string
	Description string
	Status      Status
	ProofFileID *string
	RecordedBy  string
	PaidAt      time.Time
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

type RefundKind string

const (
	RefundHalf            RefundKind = "50%"
	RefundThreeQuarters   RefundKind = "75%"
	RefundFull            RefundKind = "100%"
	RefundSecurityDeposit RefundKind = "security_deposit"
)

func ParseRefundKind(s string) (RefundKind, bool) {
	k := RefundKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case RefundHalf, RefundThreeQuarters, RefundFull, RefundSecurityDeposit:
		return k, true
	case "security-deposit", "security deposit":
		return RefundSecurityDeposit, true
	}
	return "", false
}

type Refund struct {
	ID          string
	BookingID   string
	CustomerID  string
	Method      Method
	Amount      int64
	Kind        RefundKind
	Description string
	RecordedBy  string
	RefundedAt  time.Time
	CreatedAt   time.Time
}
