package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/carrent/rental-backend/internal/car"
	"github.com/carrent/rental-backend/internal/db"
	"github.com/carrent/rental-backend/internal/notify"
	"github.com/carrent/rental-backend/internal/user"
)

// Trip carries the fields shared by single and group bookings.
type Trip struct {
	StartDate        time.Time
	EndDate          time.Time
	PickupLocation   string
	DropoffLocation  string
	DeliveryLocation *string
	Purpose          string
	WithDriver       bool
}

type CreateRequest struct {
	CustomerID string
	CarID      string
	Trip
}

type GroupRequest struct {
	CustomerID string
	CarIDs     []string
	Trip
}

// Options holds the tunables the service needs from configuration.
type Options struct {
	ExtensionPaymentWindow time.Duration
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	// CreateGroup books several cars for the same trip atomically under one group ID.
	CreateGroup(ctx context.Context, req GroupRequest) ([]*Booking, error)
	Get(ctx context.Context, id string, actor Actor) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Customer requests
	RequestCancellation(ctx context.Context, id string, actor Actor) (*Booking, error)
	WithdrawCancellation(ctx context.Context, id string, actor Actor) (*Booking, error)
	RequestExtension(ctx context.Context, id string, actor Actor, newEnd time.Time) (*Booking, error)
	WithdrawExtension(ctx context.Context, id string, actor Actor) (*Booking, error)

	// Staff actions
	Confirm(ctx context.Context, id string) (*Booking, error)
	Release(ctx context.Context, id string) (*Booking, error)
	Return(ctx context.Context, id string) (*Booking, error)
	ApproveCancellation(ctx context.Context, id string) (*Booking, error)
	RejectCancellation(ctx context.Context, id string) (*Booking, error)
	ApproveExtension(ctx context.Context, id string) (*Booking, error)
	RejectExtension(ctx context.Context, id string) (*Booking, error)
	AssignDriver(ctx context.Context, id string, driverID string) (*Booking, error)
}

type service struct {
	repo     Repository
	tx       db.Transactor
	cars     car.Service
	users    user.Service
	notifier notify.Notifier
	log      logrus.FieldLogger
	opts     Options
	now      func() time.Time
}

func NewService(
	repo Repository,
	tx db.Transactor,
	cars car.Service,
	users user.Service,
	notifier notify.Notifier,
	log logrus.FieldLogger,
	opts Options,
) Service {
	if opts.ExtensionPaymentWindow <= 0 {
		opts.ExtensionPaymentWindow = 24 * time.Hour
	}
	return &service{
		repo:     repo,
		tx:       tx,
		cars:     cars,
		users:    users,
		notifier: notifier,
		log:      log,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) validateTrip(t Trip) error {
	if !t.EndDate.After(t.StartDate) {
		return ErrInvalidTimeRange
	}
	// A start earlier today is allowed; walk-in rentals are booked on the spot.
	if t.StartDate.Before(s.now().Truncate(day)) {
		return ErrStartTimePast
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	bookings, err := s.create(ctx, req.CustomerID, []string{req.CarID}, req.Trip, nil)
	if err != nil {
		return nil, err
	}
	return bookings[0], nil
}

func (s *service) CreateGroup(ctx context.Context, req GroupRequest) ([]*Booking, error) {
	if len(req.CarIDs) == 0 {
		return nil, ErrEmptyGroup
	}
	seen := make(map[string]struct{}, len(req.CarIDs))
	for _, id := range req.CarIDs {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateCar
		}
		seen[id] = struct{}{}
	}

	groupID := uuid.NewString()
	return s.create(ctx, req.CustomerID, req.CarIDs, req.Trip, &groupID)
}

func (s *service) create(ctx context.Context, customerID string, carIDs []string, trip Trip, groupID *string) ([]*Booking, error) {
	if err := s.validateTrip(trip); err != nil {
		return nil, err
	}
	trip.PickupLocation = strings.TrimSpace(trip.PickupLocation)
	trip.DropoffLocation = strings.TrimSpace(trip.DropoffLocation)
	trip.Purpose = strings.TrimSpace(trip.Purpose)

	var created []*Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, carID := range carIDs {
			if err := s.repo.LockCar(ctx, carID); err != nil {
				return err
			}

			c, err := s.cars.GetBookable(ctx, carID)
			if err != nil {
				if errors.Is(err, car.ErrNotFound) {
					return ErrCarNotFound
				}
				return err
			}

			hasOverlap, err := s.repo.HasOverlap(ctx, carID, trip.StartDate, trip.EndDate, "")
			if err != nil {
				return err
			}
			if hasOverlap {
				return ErrTimeConflict
			}

			b := &Booking{
				CustomerID:       customerID,
				CarID:            carID,
				CarName:          c.DisplayName(),
				BookingGroupID:   groupID,
				StartDate:        trip.StartDate,
				EndDate:          trip.EndDate,
				PickupLocation:   trip.PickupLocation,
				DropoffLocation:  trip.DropoffLocation,
				DeliveryLocation: trip.DeliveryLocation,
				Purpose:          trip.Purpose,
				WithDriver:       trip.WithDriver,
				DailyRate:        c.DailyRate,
				TotalAmount:      c.DailyRate * RentalDays(trip.StartDate, trip.EndDate),
				Status:           StatusPending,
			}
			if err := s.repo.Create(ctx, b); err != nil {
				return err
			}

			// Reload for the joined customer and car names.
			full, err := s.repo.GetByID(ctx, b.ID)
			if err != nil {
				return err
			}
			created = append(created, full)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, b := range created {
		s.publish(ctx, "booking.created", b)
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b) && (b.DriverID == nil || *b.DriverID != actor.UserID) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) RequestCancellation(ctx context.Context, id string, actor Actor) (*Booking, error) {
	return s.mutate(ctx, id, &actor, "booking.cancel_requested", func(_ context.Context, b *Booking) error {
		return b.RequestCancellation()
	})
}

func (s *service) WithdrawCancellation(ctx context.Context, id string, actor Actor) (*Booking, error) {
	return s.mutate(ctx, id, &actor, "booking.cancel_withdrawn", func(_ context.Context, b *Booking) error {
		return b.WithdrawCancellation()
	})
}

func (s *service) RequestExtension(ctx context.Context, id string, actor Actor, newEnd time.Time) (*Booking, error) {
	return s.mutate(ctx, id, &actor, "booking.extension_requested", func(ctx context.Context, b *Booking) error {
		oldEnd := b.EndDate
		if _, err := b.RequestExtension(newEnd, s.now(), s.opts.ExtensionPaymentWindow); err != nil {
			return err
		}

		if err := s.repo.LockCar(ctx, b.CarID); err != nil {
			return err
		}
		hasOverlap, err := s.repo.HasOverlap(ctx, b.CarID, oldEnd, newEnd, b.ID)
		if err != nil {
			return err
		}
		if hasOverlap {
			return ErrTimeConflict
		}
		return nil
	})
}

func (s *service) WithdrawExtension(ctx context.Context, id string, actor Actor) (*Booking, error) {
	return s.mutate(ctx, id, &actor, "booking.extension_withdrawn", func(_ context.Context, b *Booking) error {
		return b.WithdrawExtension()
	})
}

func (s *service) Confirm(ctx context.Context, id string) (*Booking, error) {
	return s.mutate(ctx, id, nil, "booking.confirmed", func(_ context.Context, b *Booking) error {
		return b.Confirm()
	})
}

func (s *service) Release(ctx context.Context, id string) (*Booking, error) {
	return s.mutate(ctx, id, nil, "booking.released", func(_ context.Context, b *Booking) error {
		return b.Release(s.now())
	})
}

func (s *service) Return(ctx context.Context, id string) (*Booking, error) {
	return s.mutate(ctx, id, nil, "booking.returned", func(_ context.Context, b *Booking) error {
		return b.Return(s.now())
	})
}

func (s *service) ApproveCancellation(ctx context.Context, id string) (*Booking, error) {
	return s.mutate(ctx, id, nil, "booking.cancelled", func(_ context.Context, b *Booking) error {
		return b.ApproveCancellation()
	})
}

func (s *service) RejectCancellation(ctx context.Context, id string) (*Booking, error) {
	return s.mutate(ctx, id, nil, "booking.cancel_rejected", func(_ context.Context, b *Booking) error {
		return b.RejectCancellation()
	})
}

func (s *service) ApproveExtension(ctx context.Context, id string) (*Booking, error) {
	return s.mutate(ctx, id, nil, "booking.extended", func(_ context.Context, b *Booking) error {
		return b.ApproveExtension()
	})
}

func (s *service) RejectExtension(ctx context.Context, id string) (*Booking, error) {
	return s.mutate(ctx, id, nil, "booking.extension_rejected", func(_ context.Context, b *Booking) error {
		return b.RejectExtension()
	})
}

func (s *service) AssignDriver(ctx context.Context, id string, driverID string) (*Booking, error) {
	d, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	if d.Role != user.RoleDriver || !d.IsActive {
		return nil, ErrDriverNotFound
	}

	return s.mutate(ctx, id, nil, "booking.driver_assigned", func(_ context.Context, b *Booking) error {
		if err := b.AssignDriver(d.ID); err != nil {
			return err
		}
		name := d.Email
		if d.DisplayName != nil {
			name = *d.DisplayName
		}
		b.DriverName = &name
		return nil
	})
}

// mutate runs fn against the locked booking inside one transaction and persists the result.
// A nil actor means a staff action; otherwise the actor must own the booking.
func (s *service) mutate(ctx context.Context, id string, actor *Actor, event string, fn func(ctx context.Context, b *Booking) error) (*Booking, error) {
	var out *Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if actor != nil && !actor.canAccess(b) {
			return ErrPermissionDenied
		}

		if err := fn(ctx, b); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event, out)
	return out, nil
}

// publish is best effort: the booking change is already committed.
func (s *service) publish(ctx context.Context, kind string, b *Booking) {
	msg := notify.Message{
		Kind:    kind,
		Channel: notify.ChannelEvent,
		To:      b.CustomerID,
		Data: map[string]string{
			"booking_id": b.ID,
			"car_id":     b.CarID,
			"status":     string(b.Status),
		},
		CreatedAt: s.now(),
	}
	if b.NewEndDate != nil {
		msg.Data["new_end_date"] = b.NewEndDate.Format(time.RFC3339)
	}

	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"event":      kind,
		}).Warn("failed to publish booking event")
	}
}
