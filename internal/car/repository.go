package car

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carrent/rental-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, c *Car) error
	GetByID(ctx context.Context, id string) (*Car, error)
	List(ctx context.Context, filter Filter) ([]*Car, int, error)
	Update(ctx context.Context, c *Car) error
	SetImage(ctx context.Context, id string, fileID *string) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var carColumns = []string{
	"id", "plate_number", "brand", "model", "year", "seats", "transmission",
	"daily_rate", "is_available", "image_file_id", "created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scanCar(row pgx.Row, extra ...any) (*Car, error) {
	var c Car
	dest := []any{
		&c.ID, &c.PlateNumber, &c.Brand, &c.Model, &c.Year, &c.Seats, &c.Transmission,
		&c.DailyRate, &c.IsAvailable, &c.ImageFileID, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

func mapWriteError(err error, op string) error {
	var e *pgconn.PgError
	if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
		return ErrPlateAlreadyUsed
	}
	return fmt.Errorf("%s car failed: %w", op, err)
}

func (r *pgxRepository) Create(ctx context.Context, c *Car) error {
	query, args, err := psql.Insert("public.cars").
		Columns("plate_number", "brand", "model", "year", "seats", "transmission", "daily_rate", "is_available").
		Values(c.PlateNumber, c.Brand, c.Model, c.Year, c.Seats, c.Transmission, c.DailyRate, c.IsAvailable).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create car query failed: %w", err)
	}

	if err := db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return mapWriteError(err, "create")
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Car, error) {
	query, args, err := psql.Select(carColumns...).
		From("public.cars").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get car query failed: %w", err)
	}

	c, err := scanCar(db.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get car failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Car, int, error) {
	query := psql.Select(append(carColumns, "count(*) OVER() AS total_count")...).
		From("public.cars")

	if filter.Brand != "" {
		query = query.Where(squirrel.ILike{"brand": "%" + filter.Brand + "%"})
	}
	if filter.Transmission != "" {
		query = query.Where(squirrel.Eq{"transmission": filter.Transmission})
	}
	if filter.IsAvailable != nil {
		query = query.Where(squirrel.Eq{"is_available": *filter.IsAvailable})
	}
	if filter.MinSeats > 0 {
		query = query.Where(squirrel.GtOrEq{"seats": filter.MinSeats})
	}

	orderBy := "created_at"
	if filter.SortBy != "" {
		orderBy = filter.SortBy
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
		return nil, 0, fmt.Errorf("build list cars query failed: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cars failed: %w", err)
	}
	defer rows.Close()

	var result []*Car
	var total int
	for rows.Next() {
		c, err := scanCar(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan car failed: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate cars failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, c *Car) error {
	c.UpdatedAt = time.Now().UTC()
	return r.exec(ctx, psql.Update("public.cars").
		Set("plate_number", c.PlateNumber).
		Set("brand", c.Brand).
		Set("model", c.Model).
		Set("year", c.Year).
		Set("seats", c.Seats).
		Set("transmission", c.Transmission).
		Set("daily_rate", c.DailyRate).
		Set("is_available", c.IsAvailable).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID}))
}

func (r *pgxRepository) SetImage(ctx context.Context, id string, fileID *string) error {
	return r.exec(ctx, psql.Update("public.cars").
		Set("image_file_id", fileID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}))
}

func (r *pgxRepository) exec(ctx context.Context, b squirrel.UpdateBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update car query failed: %w", err)
	}

	ct, err := db.QuerierFrom(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "update")
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
