package payment

// Everything that reports a balance goes through the functions in this file.

type PaymentStatus string

const (
	Paid   PaymentStatus = "Paid"
	Unpaid PaymentStatus = "Unpaid"
)

// TotalPaid sums payments that still count against the balance.
func TotalPaid(payments []*Payment) int64 {
	var sum int64
	for _, p := range payments {
		if p.Status.Counts() {
			sum += p.Amount
		}
	}
	return sum
}

// TotalConfirmed sums payments staff have verified.
func TotalConfirmed(payments []*Payment) int64 {
	var sum int64
	for _, p := range payments {
		if p.Status == StatusConfirmed {
			sum += p.Amount
		}
	}
	return sum
}

func TotalRefunded(refunds []*Refund) int64 {
	var sum int64
	for _, r := range refunds {
		sum += r.Amount
	}
	return sum
}

// DeriveBalance is total - payments + refunds.
func DeriveBalance(total int64, payments []*Payment, refunds []*Refund) int64 {
	return total - TotalPaid(payments) + TotalRefunded(refunds)
}

// DerivePaymentStatus is Paid iff nothing is outstanding.
func DerivePaymentStatus(balance int64) PaymentStatus {
	if balance <= 0 {
		return Paid
	}
	return Unpaid
}

// Summary is the ledger of one booking. Paid holds confirmed money only.
// Balance also subtracts Pending, PaymentStatus does not.
type Summary struct {
	BookingID     string
	TotalAmount   int64
	Paid          int64
	Pending       int64
	Refunded      int64
	Balance       int64
	PaymentStatus PaymentStatus
	Payments      []*Payment
	Refunds       []*Refund
}

func Summarize(bookingID string, total int64, payments []*Payment, refunds []*Refund) Summary {
	var pending int64
	for _, p := range payments {
		if p.Status == StatusPending {
			pending += p.Amount
		}
	}
	confirmed := TotalConfirmed(payments)
	refunded := TotalRefunded(refunds)
	return Summary{
		BookingID:     bookingID,
		TotalAmount:   total,
		Paid:          confirmed,
		Pending:       pending,
		Refunded:      refunded,
		Balance:       DeriveBalance(total, payments, refunds),
		PaymentStatus: DerivePaymentStatus(total - confirmed + refunded),
		Payments:      payments,
		Refunds:       refunds,
	}
}

// OverpaymentDetails is attached to ErrOverpayment.
type OverpaymentDetails struct {
	Balance int64 `json:"balance"`
	Amount  int64 `json:"amount"`
}

// OverrefundDetails is attached to ErrOverrefund.
type OverrefundDetails struct {
	Paid       int64 `json:"paid"`
	Refunded   int64 `json:"refunded"`
	Refundable int64 `json:"refundable"`
	Amount     int64 `json:"amount"`
}

// CheckPayment rejects amounts that would drive the balance below zero.
func CheckPayment(s Summary, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > s.Balance {
		return ErrOverpayment.WithDetails(OverpaymentDetails{Balance: s.Balance, Amount: amount})
	}
	return nil
}

// CheckRefund rejects refunds beyond what was confirmed and not yet refunded.
func CheckRefund(s Summary, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if refundable := s.Paid - s.Refunded; amount > refundable {
		return overrefund(s, amount)
	}
	return nil
}

// CheckVoid rejects voiding pending payments when confirmed money no longer covers the refunds.
func CheckVoid(s Summary) error {
	if s.Refunded > s.Paid {
		return overrefund(s, 0)
	}
	return nil
}

func overrefund(s Summary, amount int64) error {
	return ErrOverrefund.WithDetails(OverrefundDetails{
		Paid:       s.Paid,
		Refunded:   s.Refunded,
		Refundable: s.Paid - s.Refunded,
		Amount:     amount,
	})
}
