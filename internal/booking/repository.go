package booking

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
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// GetForUpdate loads the booking and locks its row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, booking *Booking) error

	// LockCar serializes booking writes for one car so overlap checks cannot race.
	LockCar(ctx context.Context, carID string) error
	// HasOverlap checks if there is any conflicting booking for the car in the given time range.
	// excludeBookingID is used during updates to ignore the booking itself.
	HasOverlap(ctx context.Context, carID string, start, end time.Time, excludeBookingID string) (bool, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.customer_id", "COALESCE(cu.display_name, cu.email)", "b.car_id",
	"c.brand || ' ' || c.model || ' (' || c.plate_number || ')'",
	"b.driver_id", "COALESCE(d.display_name, d.email)", "b.booking_group_id",
	"b.start_date", "b.end_date", "b.pickup_location", "b.dropoff_location", "b.delivery_location",
	"b.purpose", "b.with_driver", "b.daily_rate", "b.total_amount", "b.status",
	"b.is_cancel", "b.is_extend", "b.is_pay", "b.new_end_date", "b.extension_cost", "b.extension_deadline",
	"b.picked_up_at", "b.returned_at", "b.created_at", "b.updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectBookings(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From("public.bookings b").
		Join("public.users cu ON b.customer_id = cu.id").
		Join("public.cars c ON b.car_id = c.id").
		LeftJoin("public.users d ON b.driver_id = d.id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.CustomerID, &b.CustomerName, &b.CarID, &b.CarName,
		&b.DriverID, &b.DriverName, &b.BookingGroupID,
		&b.StartDate, &b.EndDate, &b.PickupLocation, &b.DropoffLocation, &b.DeliveryLocation,
		&b.Purpose, &b.WithDriver, &b.DailyRate, &b.TotalAmount, &b.Status,
		&b.IsCancel, &b.IsExtend, &b.IsPay, &b.NewEndDate, &b.ExtensionCost, &b.ExtensionDeadline,
		&b.PickedUpAt, &b.ReturnedAt, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"customer_id", "car_id", "driver_id", "booking_group_id",
			"start_date", "end_date", "pickup_location", "dropoff_location", "delivery_location",
			"purpose", "with_driver", "daily_rate", "total_amount", "status",
		).
		Values(
			b.CustomerID, b.CarID, b.DriverID, b.BookingGroupID,
			b.StartDate, b.EndDate, b.PickupLocation, b.DropoffLocation, b.DeliveryLocation,
			b.Purpose, b.WithDriver, b.DailyRate, b.TotalAmount, b.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, selectBookings(bookingColumns...).Where(squirrel.Eq{"b.id": id}))
}

func (r *pgxRepository) GetForUpdate(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, selectBookings(bookingColumns...).
		Where(squirrel.Eq{"b.id": id}).
		Suffix("FOR UPDATE OF b"))
}

func (r *pgxRepository) getOne(ctx context.Context, q squirrel.SelectBuilder) (*Booking, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings(append(bookingColumns, "count(*) OVER() AS total_count")...)

	if filter.CustomerID != "" {
		query = query.Where(squirrel.Eq{"b.customer_id": filter.CustomerID})
	}
	if filter.DriverID != "" {
		query = query.Where(squirrel.Eq{"b.driver_id": filter.DriverID})
	}
	if filter.CarID != "" {
		query = query.Where(squirrel.Eq{"b.car_id": filter.CarID})
	}
	if filter.GroupID != "" {
		query = query.Where(squirrel.Eq{"b.booking_group_id": filter.GroupID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	switch filter.Pending {
	case "cancel":
		query = query.Where(squirrel.Eq{"b.is_cancel": true})
	case "extend":
		query = query.Where(squirrel.Eq{"b.is_extend": true})
	case "pay":
		query = query.Where(squirrel.Eq{"b.is_pay": true})
	}
	// Date range filtering (intersection logic)
	if filter.StartDate != nil {
		query = query.Where(squirrel.GtOrEq{"b.end_date": filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(squirrel.LtOrEq{"b.start_date": filter.EndDate})
	}

	orderBy := "b.start_date"
	if filter.SortBy != "" {
		orderBy = "b." + filter.SortBy
	}
	orderDir := "DESC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	query, args, err := psql.Update("public.bookings").
		Set("driver_id", b.DriverID).
		Set("end_date", b.EndDate).
		Set("with_driver", b.WithDriver).
		Set("total_amount", b.TotalAmount).
		Set("status", b.Status).
		Set("is_cancel", b.IsCancel).
		Set("is_extend", b.IsExtend).
		Set("is_pay", b.IsPay).
		Set("new_end_date", b.NewEndDate).
		Set("extension_cost", b.ExtensionCost).
		Set("extension_deadline", b.ExtensionDeadline).
		Set("picked_up_at", b.PickedUpAt).
		Set("returned_at", b.ReturnedAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) LockCar(ctx context.Context, carID string) error {
	query, args, err := psql.Select("id").
		From("public.cars").
		Where(squirrel.Eq{"id": carID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock car query failed: %w", err)
	}

	var id string
	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCarNotFound
		}
		return fmt.Errorf("lock car failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, carID string, start, end time.Time, excludeBookingID string) (bool, error) {
	// A booking holds the car from start to its effective end: the staged
	// extension end while one is pending. Closed bookings hold nothing.
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"car_id": carID}).
		Where(squirrel.NotEq{"status": []Status{StatusCancelled, StatusCompleted}}).
		Where(squirrel.Lt{"start_date": end}).
		Where(squirrel.Expr("COALESCE(new_end_date, end_date) > ?", start))

	if excludeBookingID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeBookingID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}
