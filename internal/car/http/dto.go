package http

import (
	"time"

	"github.com/carrent/rental-backend/internal/car"
	"github.com/carrent/rental-backend/internal/file"
	"github.com/carrent/rental-backend/internal/pkg/request"
)

// ListCarsRequest defines query parameters for listing cars.
type ListCarsRequest struct {
	request.ListParams
	Brand        string `form:"brand"`
	Transmission string `form:"transmission" binding:"omitempty,oneof=automatic manual"`
	IsAvailable  *bool  `form:"is_available"`
	MinSeats     int    `form:"min_seats" binding:"omitempty,min=1"`
	SortBy       string `form:"sort_by" binding:"omitempty,oneof=daily_rate brand year created_at"`
}

type CarResponse struct {
	ID           string    `json:"id"`
	PlateNumber  string    `json:"plate_number"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	DailyRate    int64     `json:"daily_rate"`
	IsAvailable  bool      `json:"is_available"`
	ImageURL     *string   `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CarTag is a brief representation of a car.
type CarTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewResponse(c *car.Car) CarResponse {
	return CarResponse{
		ID:           c.ID,
		PlateNumber:  c.PlateNumber,
		Brand:        c.Brand,
		Model:        c.Model,
		Year:         c.Year,
		Seats:        c.Seats,
		Transmission: string(c.Transmission),
		DailyRate:    c.DailyRate,
		IsAvailable:  c.IsAvailable,
		ImageURL:     file.URLPtr(c.ImageFileID),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type CreateRequest struct {
	PlateNumber  string `json:"plate_number" binding:"required,max=16"`
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required,min=1950,max=2100"`
	Seats        int    `json:"seats" binding:"required,min=1,max=60"`
	Transmission string `json:"transmission" binding:"required,oneof=automatic manual"`
	DailyRate    int64  `json:"daily_rate" binding:"required,gt=0"`
}

type UpdateRequest struct {
	PlateNumber  *string `json:"plate_number" binding:"omitempty,max=16"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	Year         *int    `json:"year" binding:"omitempty,min=1950,max=2100"`
	Seats        *int    `json:"seats" binding:"omitempty,min=1,max=60"`
	Transmission *string `json:"transmission" binding:"omitempty,oneof=automatic manual"`
	DailyRate    *int64  `json:"daily_rate" binding:"omitempty,gt=0"`
	IsAvailable  *bool   `json:"is_available"`
}
