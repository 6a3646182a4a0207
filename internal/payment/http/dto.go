package http

import (
	"time"

	"github.com/carrent/rental-backend/internal/file"
	"github.com/carrent/rental-backend/internal/payment"
)

type RecordPaymentBody struct {
	BookingID     string     `json:"booking_id" binding:"required,uuid"`
	CustomerID    string     `json:"customer_id" binding:"omitempty,uuid"`
	Amount        int64      `json:"amount" binding:"required,gt=0"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
	GCashNo       string     `json:"gcash_no" binding:"omitempty,max=20"`
	ReferenceNo   string     `json:"reference_no" binding:"omitempty,max=64"`
	Description   string     `json:"description" binding:"omitempty,max=500"`
	PaidAt        *time.Time `json:"paid_at"`
}

type RecordRefundBody struct {
	BookingID    string     `json:"booking_id" binding:"required,uuid"`
	Amount       int64      `json:"refund_amount" binding:"required,gt=0"`
	RefundMethod string     `json:"refund_method" binding:"required"`
	Type         string     `json:"type" binding:"required"`
	Description  string     `json:"description" binding:"omitempty,max=500"`
	RefundDate   *time.Time `json:"refund_date"`
}

type PaymentResponse struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"booking_id"`
	CustomerID    string     `json:"customer_id"`
	Amount        int64      `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	ReferenceNo   *string    `json:"reference_no"`
	GCashNo       *string    `json:"gcash_no"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	ProofURL      *string    `json:"proof_url"`
	PaidAt        time.Time  `json:"paid_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		PaymentMethod: string(p.Method),
		ReferenceNo:   p.ReferenceNo,
		GCashNo:       p.GCashNo,
		Description:   p.Description,
		Status:        string(p.Status),
		ProofURL:      file.URLPtr(p.ProofFileID),
		PaidAt:        p.PaidAt,
		ConfirmedAt:   p.ConfirmedAt,
	}
}

type RefundResponse struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	CustomerID   string    `json:"customer_id"`
	RefundMethod string    `json:"refund_method"`
	Amount       int64     `json:"refund_amount"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	RefundDate   time.Time `json:"refund_date"`
}

func NewRefundResponse(r *payment.Refund) RefundResponse {
	return RefundResponse{
		ID:           r.ID,
		BookingID:    r.BookingID,
		CustomerID:   r.CustomerID,
		RefundMethod: string(r.Method),
		Amount:       r.Amount,
		Type:         string(r.Kind),
		Description:  r.Description,
		RefundDate:   r.RefundedAt,
	}
}

// LedgerResponse is the only place clients read balances from.
type LedgerResponse struct {
	BookingID     string            `json:"booking_id"`
	TotalAmount   int64             `json:"total_amount"`
	TotalPaid     int64             `json:"total_paid"`
	PendingAmount int64             `json:"pending_amount"`
	TotalRefunded int64             `json:"total_refunded"`
	Balance       int64             `json:"balance"`
	PaymentStatus string            `json:"payment_status"`
	Payments      []PaymentResponse `json:"payments"`
	Refunds       []RefundResponse  `json:"refunds"`
}

func NewLedgerResponse(s payment.Summary) LedgerResponse {
	resp := LedgerResponse{
		BookingID:     s.BookingID,
		TotalAmount:   s.TotalAmount,
		TotalPaid:     s.Paid,
		PendingAmount: s.Pending,
		TotalRefunded: s.Refunded,
		Balance:       s.Balance,
		PaymentStatus: string(s.PaymentStatus),
		Payments:      make([]PaymentResponse, len(s.Payments)),
		Refunds:       make([]RefundResponse, len(s.Refunds)),
	}
	for i, p := range s.Payments {
		resp.Payments[i] = NewPaymentResponse(p)
	}
	for i, r := range s.Refunds {
		resp.Refunds[i] = NewRefundResponse(r)
	}
	return resp
}

type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Ledger  LedgerResponse  `json:"ledger"`
}

type RecordRefundResponse struct {
	Refund RefundResponse `json:"refund"`
	Ledger LedgerResponse `json:"ledger"`
}
