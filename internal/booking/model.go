package booking

import (
	"net/http"
	"time"

	"github.com/carrent/rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict       = apperror.New(http.StatusConflict, "car already booked for these dates")
	ErrInvalidTimeRange   = apperror.New(http.StatusBadRequest, "start date must be before end date")
	ErrInvalidStatus      = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrCarNotFound        = apperror.New(http.StatusNotFound, "car not found")
	ErrDriverNotFound     = apperror.New(http.StatusBadRequest, "driver not found")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
	ErrStartTimePast      = apperror.New(http.StatusBadRequest, "cannot create booking in the past")
	ErrEmptyGroup         = apperror.New(http.StatusBadRequest, "at least one car is required")
	ErrDuplicateCar       = apperror.New(http.StatusBadRequest, "the same car appears twice in a group booking")
	ErrAlreadyPending     = apperror.New(http.StatusBadRequest, "a request of this kind is already pending")
	ErrInvalidState       = apperror.New(http.StatusBadRequest, "action not allowed in the booking's current status")
	ErrInvalidDate        = apperror.New(http.StatusBadRequest, "new end date must be after the current end date")
	ErrConflictingRequest = apperror.New(http.StatusBadRequest, "another request is pending on this booking")
	ErrNoPendingRequest   = apperror.New(http.StatusBadRequest, "no such request is pending")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Booking is a reservation of one car for a date range.
// Pending customer requests are carried as flags until staff act on them.
type Booking struct {
	ID             string
	CustomerID     string
	CustomerName   string
	CarID          string
	CarName        string
	DriverID       *string
	DriverName     *string
	BookingGroupID *string

	StartDate        time.Time
	EndDate          time.Time
	PickupLocation   string
	DropoffLocation  string
	DeliveryLocation *string
	Purpose          string
	WithDriver       bool

	// DailyRate is the car's rate when the booking was made; extensions are priced with it.
	DailyRate   int64
	TotalAmount int64
	Status      Status

	IsCancel bool
	IsExtend bool
	IsPay    bool

	NewEndDate        *time.Time
	ExtensionCost     int64
	ExtensionDeadline *time.Time

	PickedUpAt *time.Time
	ReturnedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsReleased reports whether the car has been handed over.
func (b *Booking) IsReleased() bool { return b.PickedUpAt != nil }

// IsReturned reports whether the car has come back.
func (b *Booking) IsReturned() bool { return b.ReturnedAt != nil }

// Actor is who is acting on a booking. Back-office actors may act on any booking.
type Actor struct {
	UserID     string
	BackOffice bool
}

func (a Actor) canAccess(b *Booking) bool {
	return a.BackOffice || a.UserID == b.CustomerID
}

type Filter struct {
	CustomerID string
	DriverID   string
	CarID      string
	GroupID    string
	Status     Status
	// Pending narrows to bookings with the named request outstanding: "cancel", "extend" or "pay".
	Pending   string
	StartDate *time.Time // Filter bookings ending on or after this time
	EndDate   *time.Time // Filter bookings starting on or before this time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
