package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carrent/rental-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*Payment, error)
	// SetStatusByBooking moves every payment of the booking in status from to status to.
	// It returns how many payments changed.
	SetStatusByBooking(ctx context.Context, bookingID string, from, to Status, at time.Time) (int64, error)
	SetProof(ctx context.Context, id string, fileID string) error

	CreateRefund(ctx context.Context, r *Refund) error
	ListRefundsByBooking(ctx context.Context, bookingID string) ([]*Refund, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var paymentColumns = []string{
	"id", "booking_id", "customer_id", "amount", "method", "reference_no", "gcash_no",
	"description", "status", "proof_file_id", "recorded_by", "paid_at", "confirmed_at", "created_at",
}

var refundColumns = []string{
	"id", "booking_id", "customer_id", "method", "amount", "kind", "description",
	"recorded_by", "refunded_at", "created_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.CustomerID, &p.Amount, &p.Method, &p.ReferenceNo, &p.GCashNo,
		&p.Description, &p.Status, &p.ProofFileID, &p.RecordedBy, &p.PaidAt, &p.ConfirmedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanRefund(row pgx.Row) (*Refund, error) {
	var r Refund
	err := row.Scan(
		&r.ID, &r.BookingID, &r.CustomerID, &r.Method, &r.Amount, &r.Kind, &r.Description,
		&r.RecordedBy, &r.RefundedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *pgxRepository) Create(ctx context.Context, p *Payment) error {
	query, args, err := psql.Insert("public.payments").
		Columns("booking_id", "customer_id", "amount", "method", "reference_no", "gcash_no",
			"description", "status", "recorded_by", "paid_at", "confirmed_at").
		Values(p.BookingID, p.CustomerID, p.Amount, p.Method, p.ReferenceNo, p.GCashNo,
			p.Description, p.Status, p.RecordedBy, p.PaidAt, p.ConfirmedAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create payment query failed: %w", err)
	}

	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("create payment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	query, args, err := psql.Select(paymentColumns...).
		From("public.payments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get payment query failed: %w", err)
	}

	p, err := scanPayment(db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment failed: %w", err)
	}
	return p, nil
}

func (r *pgxRepository) ListByBooking(ctx context.Context, bookingID string) ([]*Payment, error) {
	query, args, err := psql.Select(paymentColumns...).
		From("public.payments").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("paid_at ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list payments query failed: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments failed: %w", err)
	}
	defer rows.Close()

	var result []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment failed: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) SetStatusByBooking(ctx context.Context, bookingID string, from, to Status, at time.Time) (int64, error) {
	b := psql.Update("public.payments").
		Set("status", to).
		Where(squirrel.Eq{"booking_id": bookingID, "status": from})
	if to == StatusConfirmed {
		b = b.Set("confirmed_at", at)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update payment status query failed: %w", err)
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update payment status failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *pgxRepository) SetProof(ctx context.Context, id string, fileID string) error {
	query, args, err := psql.Update("public.payments").
		Set("proof_file_id", fileID).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set proof query failed: %w", err)
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set payment proof failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CreateRefund(ctx context.Context, rf *Refund) error {
	query, args, err := psql.Insert("public.refunds").
		Columns("booking_id", "customer_id", "method", "amount", "kind", "description", "recorded_by", "refunded_at").
		Values(rf.BookingID, rf.CustomerID, rf.Method, rf.Amount, rf.Kind, rf.Description, rf.RecordedBy, rf.RefundedAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create refund query failed: %w", err)
	}

	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&rf.ID, &rf.CreatedAt); err != nil {
		return fmt.Errorf("create refund failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListRefundsByBooking(ctx context.Context, bookingID string) ([]*Refund, error) {
	query, args, err := psql.Select(refundColumns...).
		From("public.refunds").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("refunded_at ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list refunds query failed: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list refunds failed: %w", err)
	}
	defer rows.Close()

	var result []*Refund
	for rows.Next() {
		rf, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refund failed: %w", err)
		}
		result = append(result, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refunds failed: %w", err)
	}
	return result, nil
}
