package car

import (
	"context"
	"strings"
)

type CreateRequest struct {
	PlateNumber  string
	Brand        string
	Model        string
	Year         int
	Seats        int
	Transmission Transmission
	DailyRate    int64
}

type UpdateRequest struct {
	PlateNumber  *string
	Brand        *string
	Model        *string
	Year         *int
	Seats        *int
	Transmission *Transmission
	DailyRate    *int64
	IsAvailable  *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Car, error)
	GetByID(ctx context.Context, id string) (*Car, error)
	// GetBookable returns the car only if it can currently be booked.
	GetBookable(ctx context.Context, id string) (*Car, error)
	List(ctx context.Context, filter Filter) ([]*Car, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Car, error)
	// Delete retires a car. Cars are never removed because bookings reference them.
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id string, fileID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Car, error) {
	c := &Car{
		PlateNumber:  normalizePlate(req.PlateNumber),
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Year:         req.Year,
		Seats:        req.Seats,
		Transmission: req.Transmission,
		DailyRate:    req.DailyRate,
		IsAvailable:  true,
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Car, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBookable(ctx context.Context, id string) (*Car, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsAvailable {
		return nil, ErrUnavailable
	}
	return c, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Car, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Car, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PlateNumber != nil {
		c.PlateNumber = normalizePlate(*req.PlateNumber)
	}
	if req.Brand != nil {
		c.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		c.Model = strings.TrimSpace(*req.Model)
	}
	if req.Year != nil {
		c.Year = *req.Year
	}
	if req.Seats != nil {
		c.Seats = *req.Seats
	}
	if req.Transmission != nil {
		c.Transmission = *req.Transmission
	}
	if req.DailyRate != nil {
		c.DailyRate = *req.DailyRate
	}
	if req.IsAvailable != nil {
		c.IsAvailable = *req.IsAvailable
	}

	if err := validate(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.IsAvailable = false
	return s.repo.Update(ctx, c)
}

func (s *service) SetImage(ctx context.Context, id string, fileID string) error {
	return s.repo.SetImage(ctx, id, &fileID)
}

func validate(c *Car) error {
	if c.PlateNumber == "" {
		return ErrEmptyPlate
	}
	if c.DailyRate <= 0 {
		return ErrInvalidDailyRate
	}
	if !c.Transmission.Valid() {
		return ErrInvalidTransmission
	}
	if c.Seats < 1 || c.Seats > 60 {
		return ErrInvalidSeats
	}
	return nil
}

// normalizePlate uppercases and collapses internal whitespace, so "abc  123" and "ABC 123" collide.
func normalizePlate(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
