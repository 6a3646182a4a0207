package car

import (
	"net/http"
	"time"

	"github.com/carrent/rental-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "car not found")
	ErrPlateAlreadyUsed    = apperror.New(http.StatusConflict, "plate number already registered")
	ErrEmptyPlate          = apperror.New(http.StatusBadRequest, "plate number cannot be empty")
	ErrInvalidDailyRate    = apperror.New(http.StatusBadRequest, "daily rate must be greater than zero")
	ErrInvalidTransmission = apperror.New(http.StatusBadRequest, "transmission must be automatic or manual")
	ErrInvalidSeats        = apperror.New(http.StatusBadRequest, "seats must be between 1 and 60")
	ErrUnavailable         = apperror.New(http.StatusBadRequest, "car is not available for booking")
)

type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
)

func (t Transmission) Valid() bool {
	return t == TransmissionAutomatic || t == TransmissionManual
}

// Car is a rentable vehicle. DailyRate is in whole currency units.
type Car struct {
	ID           string
	PlateNumber  string
	Brand        string
	Model        string
	Year         int
	Seats        int
	Transmission Transmission
	DailyRate    int64
	IsAvailable  bool
	ImageFileID  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName is used on statements and booking tags.
func (c *Car) DisplayName() string {
	return c.Brand + " " + c.Model + " (" + c.PlateNumber + ")"
}

// Filter defines parameters for listing cars.
type Filter struct {
	Brand        string
	Transmission Transmission
	IsAvailable  *bool
	MinSeats     int
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
