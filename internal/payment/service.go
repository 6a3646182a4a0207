package payment

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carrent/rental-backend/internal/booking"
	"github.com/carrent/rental-backend/internal/db"
	"github.com/carrent/rental-backend/internal/notify"
)

type RecordPaymentRequest struct {
	BookingID string
	// CustomerID is optional; when set it must match the booking.
	CustomerID  string
	Amount      int64
	Method      string
	ReferenceNo string
	GCashNo     string
	Description string
	PaidAt      *time.Time
}

type RecordRefundRequest struct {
	BookingID   string
	Amount      int64
	Method      string
	Kind        string
	Description string
	RefundedAt  *time.Time
}

type Service interface {
	// RecordPayment applies a payment against the booking balance.
	// Back-office payments are confirmed at once; customer payments wait for ConfirmPayment.
	RecordPayment(ctx context.Context, req RecordPaymentRequest, actor booking.Actor) (*Payment, Summary, error)
	ConfirmPayment(ctx context.Context, bookingID string) (Summary, error)
	RejectPayment(ctx context.Context, bookingID string) (Summary, error)
	RecordRefund(ctx context.Context, req RecordRefundRequest, actor booking.Actor) (*Refund, Summary, error)

	GetPayment(ctx context.Context, id string, actor booking.Actor) (*Payment, error)
	AttachProof(ctx context.Context, paymentID string, actor booking.Actor, fileID string) error
	Summary(ctx context.Context, bookingID string, actor booking.Actor) (Summary, error)
	// Statement renders the booking ledger as a PDF statement of account.
	Statement(ctx context.Context, bookingID string, actor booking.Actor) ([]byte, error)
}

type service struct {
	repo     Repository
	bookings booking.Repository
	tx       db.Transactor
	notifier notify.Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo Repository, bookings booking.Repository, tx db.Transactor, notifier notify.Notifier, log logrus.FieldLogger) Service {
	return &service{
		repo:     repo,
		bookings: bookings,
		tx:       tx,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) RecordPayment(ctx context.Context, req RecordPaymentRequest, actor booking.Actor) (*Payment, Summary, error) {
	method, ok := ParseMethod(req.Method)
	if !ok {
		return nil, Summary{}, ErrInvalidMethod
	}
	if req.Amount <= 0 {
		return nil, Summary{}, ErrInvalidAmount
	}
	ref := strings.TrimSpace(req.ReferenceNo)
	if method == MethodGCash && ref == "" {
		return nil, Summary{}, ErrReferenceRequired
	}

	p := &Payment{
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		Method:      method,
		ReferenceNo: optional(ref),
		GCashNo:     optional(req.GCashNo),
		Description: strings.TrimSpace(req.Description),
		RecordedBy:  actor.UserID,
		PaidAt:      s.now(),
		Status:      StatusPending,
	}
	if req.PaidAt != nil {
		p.PaidAt = req.PaidAt.UTC()
	}
	if actor.BackOffice {
		now := s.now()
		p.Status = StatusConfirmed
		p.ConfirmedAt = &now
	}

	var summary Summary
	var b *booking.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.lockBooking(ctx, req.BookingID)
		if err != nil {
			return err
		}
		if !actor.BackOffice && actor.UserID != b.CustomerID {
			return ErrPermissionDenied
		}
		if req.CustomerID != "" && req.CustomerID != b.CustomerID {
			return ErrCustomerMismatch
		}
		if b.Status == booking.StatusCancelled {
			return ErrBookingClosed
		}

		current, err := s.summarize(ctx, b)
		if err != nil {
			return err
		}
		if err := CheckPayment(current, p.Amount); err != nil {
			return err
		}

		p.CustomerID = b.CustomerID
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		if p.Status == StatusPending {
			b.MarkPaymentSubmitted()
			if err := s.bookings.Update(ctx, b); err != nil {
				return err
			}
		}

		summary = Summarize(b.ID, b.TotalAmount, append(current.Payments, p), current.Refunds)
		return nil
	})
	if err != nil {
		return nil, Summary{}, err
	}

	s.publish(ctx, "payment.recorded", b, p.Amount, summary)
	return p, summary, nil
}

func (s *service) ConfirmPayment(ctx context.Context, bookingID string) (Summary, error) {
	return s.settlePending(ctx, bookingID, StatusConfirmed, "payment.confirmed")
}

func (s *service) RejectPayment(ctx context.Context, bookingID string) (Summary, error) {
	return s.settlePending(ctx, bookingID, StatusVoided, "payment.rejected")
}

// settlePending moves every pending payment of the booking to status and clears isPay.
func (s *service) settlePending(ctx context.Context, bookingID string, to Status, event string) (Summary, error) {
	var summary Summary
	var b *booking.Booking
	var settled int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.lockBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		before, err := s.summarize(ctx, b)
		if err != nil {
			return err
		}
		if to == StatusVoided {
			if err := CheckVoid(before); err != nil {
				return err
			}
		}
		n, err := s.repo.SetStatusByBooking(ctx, b.ID, StatusPending, to, s.now())
		if err != nil {
			return err
		}
		if n == 0 && !b.IsPay {
			return ErrNoPendingPayment
		}
		settled = before.Pending

		b.ClearPaymentFlag()
		if err := s.bookings.Update(ctx, b); err != nil {
			return err
		}

		summary, err = s.summarize(ctx, b)
		return err
	})
	if err != nil {
		return Summary{}, err
	}

	s.publish(ctx, event, b, settled, summary)
	return summary, nil
}

func (s *service) RecordRefund(ctx context.Context, req RecordRefundRequest, actor booking.Actor) (*Refund, Summary, error) {
	if !actor.BackOffice {
		return nil, Summary{}, ErrPermissionDenied
	}
	method, ok := ParseMethod(req.Method)
	if !ok {
		return nil, Summary{}, ErrInvalidMethod
	}
	kind, ok := ParseRefundKind(req.Kind)
	if !ok {
		return nil, Summary{}, ErrInvalidRefundKind
	}

	rf := &Refund{
		BookingID:   req.BookingID,
		Method:      method,
		Amount:      req.Amount,
		Kind:        kind,
		Description: strings.TrimSpace(req.Description),
		RecordedBy:  actor.UserID,
		RefundedAt:  s.now(),
	}
	if req.RefundedAt != nil {
		rf.RefundedAt = req.RefundedAt.UTC()
	}

	var summary Summary
	var b *booking.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.lockBooking(ctx, req.BookingID)
		if err != nil {
			return err
		}

		current, err := s.summarize(ctx, b)
		if err != nil {
			return err
		}
		if err := CheckRefund(current, rf.Amount); err != nil {
			return err
		}

		rf.CustomerID = b.CustomerID
		if err := s.repo.CreateRefund(ctx, rf); err != nil {
			return err
		}

		summary = Summarize(b.ID, b.TotalAmount, current.Payments, append(current.Refunds, rf))
		return nil
	})
	if err != nil {
		return nil, Summary{}, err
	}

	s.publish(ctx, "refund.recorded", b, rf.Amount, summary)
	return rf, summary, nil
}

func (s *service) GetPayment(ctx context.Context, id string, actor booking.Actor) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.BackOffice && p.CustomerID != actor.UserID {
		return nil, ErrPermissionDenied
	}
	return p, nil
}

func (s *service) AttachProof(ctx context.Context, paymentID string, actor booking.Actor, fileID string) error {
	if _, err := s.GetPayment(ctx, paymentID, actor); err != nil {
		return err
	}
	return s.repo.SetProof(ctx, paymentID, fileID)
}

func (s *service) Summary(ctx context.Context, bookingID string, actor booking.Actor) (Summary, error) {
	b, err := s.readableBooking(ctx, bookingID, actor)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(ctx, b)
}

func (s *service) Statement(ctx context.Context, bookingID string, actor booking.Actor) ([]byte, error) {
	b, err := s.readableBooking(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, b)
	if err != nil {
		return nil, err
	}
	return renderStatement(b, summary, s.now())
}

func (s *service) readableBooking(ctx context.Context, bookingID string, actor booking.Actor) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !actor.BackOffice && actor.UserID != b.CustomerID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) lockBooking(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.bookings.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *service) summarize(ctx context.Context, b *booking.Booking) (Summary, error) {
	payments, err := s.repo.ListByBooking(ctx, b.ID)
	if err != nil {
		return Summary{}, err
	}
	refunds, err := s.repo.ListRefundsByBooking(ctx, b.ID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(b.ID, b.TotalAmount, payments, refunds), nil
}

// publish is best effort: the ledger change is already committed.
func (s *service) publish(ctx context.Context, kind string, b *booking.Booking, amount int64, summary Summary) {
	msg := notify.Message{
		Kind:    kind,
		Channel: notify.ChannelEvent,
		To:      b.CustomerID,
		Data: map[string]string{
			"booking_id":     b.ID,
			"amount":         strconv.FormatInt(amount, 10),
			"balance":        strconv.FormatInt(summary.Balance, 10),
			"payment_status": string(summary.PaymentStatus),
		},
		CreatedAt: s.now(),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"event":      kind,
		}).Warn("failed to publish payment event")
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
