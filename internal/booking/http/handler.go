package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carrent/rental-backend/internal/auth"
	"github.com/carrent/rental-backend/internal/booking"
	"github.com/carrent/rental-backend/internal/pkg/request"
	"github.com/carrent/rental-backend/internal/pkg/response"
	"github.com/carrent/rental-backend/internal/user"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// actorFrom reads the caller resolved by the role middleware.
func actorFrom(c *gin.Context) booking.Actor {
	role := user.Role(auth.GetUserRole(c))
	return booking.Actor{
		UserID:     auth.GetUserID(c),
		BackOffice: role.IsBackOffice(),
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize(); err != nil {
		response.BindError(c, "invalid query parameters", err)
		return
	}

	filter := booking.Filter{
		CarID:     req.CarID,
		GroupID:   req.GroupID,
		Pending:   req.Pending,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		st, err := booking.ParseStatus(req.Status)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Status = st
	}

	// Customers only see their own bookings and drivers the trips they drive.
	switch role := user.Role(auth.GetUserRole(c)); {
	case role.IsBackOffice():
		filter.CustomerID = req.CustomerID
		filter.DriverID = req.DriverID
	case role == user.RoleDriver:
		filter.DriverID = auth.GetUserID(c)
	default:
		filter.CustomerID = auth.GetUserID(c)
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(bookings), req.Page, req.PageSize, total))
}

// customerFor picks whose booking is being created: the caller, or the named customer when staff books for them.
func customerFor(c *gin.Context, requested string) (string, bool) {
	actor := actorFrom(c)
	if requested == "" || requested == actor.UserID {
		return actor.UserID, true
	}
	return requested, actor.BackOffice
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	customerID, ok := customerFor(c, body.CustomerID)
	if !ok {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		CustomerID: customerID,
		CarID:      body.CarID,
		Trip:       body.toTrip(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// CreateGroup books several cars for one trip. Either every car is booked or none is.
func (h *Handler) CreateGroup(c *gin.Context) {
	var body CreateGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	customerID, ok := customerFor(c, body.CustomerID)
	if !ok {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	bookings, err := h.service.CreateGroup(c.Request.Context(), booking.GroupRequest{
		CustomerID: customerID,
		CarIDs:     body.CarIDs,
		Trip:       body.toTrip(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := GroupResponse{Bookings: newBookingResponses(bookings)}
	for _, b := range bookings {
		resp.TotalAmount += b.TotalAmount
	}
	if len(bookings) > 0 && bookings[0].BookingGroupID != nil {
		resp.BookingGroupID = *bookings[0].BookingGroupID
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid booking ID", err)
		return
	}

	b, err := h.service.Get(c.Request.Context(), uri.ID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Extend(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid booking ID", err)
		return
	}
	var body ExtendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	b, err := h.service.RequestExtension(c.Request.Context(), uri.ID, actorFrom(c), body.NewEndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) AssignDriver(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid booking ID", err)
		return
	}
	var body AssignDriverBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	b, err := h.service.AssignDriver(c.Request.Context(), uri.ID, body.DriverID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// customerAction adapts a customer request method into a handler.
func (h *Handler) customerAction(fn func(ctx context.Context, id string, actor booking.Actor) (*booking.Booking, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri request.ByIDRequest
		if err := c.ShouldBindUri(&uri); err != nil {
			response.BindError(c, "invalid booking ID", err)
			return
		}

		b, err := fn(c.Request.Context(), uri.ID, actorFrom(c))
		if err != nil {
			response.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, NewBookingResponse(b))
	}
}

// staffAction adapts a staff-only transition into a handler.
func (h *Handler) staffAction(fn func(ctx context.Context, id string) (*booking.Booking, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri request.ByIDRequest
		if err := c.ShouldBindUri(&uri); err != nil {
			response.BindError(c, "invalid booking ID", err)
			return
		}

		b, err := fn(c.Request.Context(), uri.ID)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, NewBookingResponse(b))
	}
}
