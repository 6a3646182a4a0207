package http

import (
	"time"

	"github.com/carrent/rental-backend/internal/booking"
	"github.com/carrent/rental-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
// customer_id and driver_id are only honoured for back-office users.
type ListBookingsRequest struct {
	request.ListParams
	CustomerID string     `form:"customer_id" binding:"omitempty,uuid"`
	DriverID   string     `form:"driver_id" binding:"omitempty,uuid"`
	CarID      string     `form:"car_id" binding:"omitempty,uuid"`
	GroupID    string     `form:"group_id" binding:"omitempty,uuid"`
	Status     string     `form:"status"`
	Pending    string     `form:"pending" binding:"omitempty,oneof=cancel extend pay"`
	StartDate  *time.Time `form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate    *time.Time `form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy     string     `form:"sort_by" binding:"omitempty,oneof=start_date end_date created_at total_amount"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID               string     `json:"id"`
	Customer         Tag        `json:"customer"`
	Car              Tag        `json:"car"`
	Driver           *Tag       `json:"driver"`
	BookingGroupID   *string    `json:"booking_group_id"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	PickupLocation   string     `json:"pickup_location"`
	DropoffLocation  string     `json:"dropoff_location"`
	DeliveryLocation *string    `json:"delivery_location"`
	Purpose          string     `json:"purpose"`
	WithDriver       bool       `json:"with_driver"`
	DailyRate        int64      `json:"daily_rate"`
	RentalDays       int64      `json:"rental_days"`
	TotalAmount      int64      `json:"total_amount"`
	Status           string     `json:"status"`
	IsCancel         bool       `json:"is_cancel"`
	IsExtend         bool       `json:"is_extend"`
	IsPay            bool       `json:"is_pay"`
	NewEndDate       *time.Time `json:"new_end_date"`
	ExtensionCost    int64      `json:"extension_cost"`
	ExtensionDue     *time.Time `json:"extension_payment_deadline"`
	IsReleased       bool       `json:"is_released"`
	IsReturned       bool       `json:"is_returned"`
	PickedUpAt       *time.Time `json:"picked_up_at"`
	ReturnedAt       *time.Time `json:"returned_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:               b.ID,
		Customer:         Tag{ID: b.CustomerID, Name: b.CustomerName},
		Car:              Tag{ID: b.CarID, Name: b.CarName},
		BookingGroupID:   b.BookingGroupID,
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		PickupLocation:   b.PickupLocation,
		DropoffLocation:  b.DropoffLocation,
		DeliveryLocation: b.DeliveryLocation,
		Purpose:          b.Purpose,
		WithDriver:       b.WithDriver,
		DailyRate:        b.DailyRate,
		RentalDays:       booking.RentalDays(b.StartDate, b.EndDate),
		TotalAmount:      b.TotalAmount,
		Status:           string(b.Status),
		IsCancel:         b.IsCancel,
		IsExtend:         b.IsExtend,
		IsPay:            b.IsPay,
		NewEndDate:       b.NewEndDate,
		ExtensionCost:    b.ExtensionCost,
		ExtensionDue:     b.ExtensionDeadline,
		IsReleased:       b.IsReleased(),
		IsReturned:       b.IsReturned(),
		PickedUpAt:       b.PickedUpAt,
		ReturnedAt:       b.ReturnedAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
	if b.DriverID != nil {
		d := Tag{ID: *b.DriverID}
		if b.DriverName != nil {
			d.Name = *b.DriverName
		}
		resp.Driver = &d
	}
	return resp
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}

// TripBody is shared by single and group creation.
type TripBody struct {
	StartDate        time.Time `json:"start_date" binding:"required"`
	EndDate          time.Time `json:"end_date" binding:"required"`
	PickupLocation   string    `json:"pickup_location" binding:"required,max=255"`
	DropoffLocation  string    `json:"dropoff_location" binding:"omitempty,max=255"`
	DeliveryLocation *string   `json:"delivery_location" binding:"omitempty,max=255"`
	Purpose          string    `json:"purpose" binding:"omitempty,max=500"`
	WithDriver       bool      `json:"with_driver"`
}

func (t TripBody) toTrip() booking.Trip {
	return booking.Trip{
		StartDate:        t.StartDate,
		EndDate:          t.EndDate,
		PickupLocation:   t.PickupLocation,
		DropoffLocation:  t.DropoffLocation,
		DeliveryLocation: t.DeliveryLocation,
		Purpose:          t.Purpose,
		WithDriver:       t.WithDriver,
	}
}

// CreateBookingBody books a single car. Staff may book on behalf of a customer.
type CreateBookingBody struct {
	CarID      string `json:"car_id" binding:"required,uuid"`
	CustomerID string `json:"customer_id" binding:"omitempty,uuid"`
	TripBody
}

type CreateGroupBody struct {
	CarIDs     []string `json:"car_ids" binding:"required,min=1,max=20,dive,uuid"`
	CustomerID string   `json:"customer_id" binding:"omitempty,uuid"`
	TripBody
}

type GroupResponse struct {
	BookingGroupID string            `json:"booking_group_id"`
	Bookings       []BookingResponse `json:"bookings"`
	TotalAmount    int64             `json:"total_amount"`
}

type ExtendBody struct {
	NewEndDate time.Time `json:"new_end_date" binding:"required"`
}

type AssignDriverBody struct {
	DriverID string `json:"driver_id" binding:"required,uuid"`
}
