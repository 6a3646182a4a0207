package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carrent/rental-backend/internal/car"
	filehttp "github.com/carrent/rental-backend/internal/file/http"
	"github.com/carrent/rental-backend/internal/pkg/request"
	"github.com/carrent/rental-backend/internal/pkg/response"
)

type Handler struct {
	service     car.Service
	fileHandler *filehttp.Handler
}

func NewHandler(service car.Service, fileHandler *filehttp.Handler) *Handler {
	return &Handler{
		service:     service,
		fileHandler: fileHandler,
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListCarsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize(); err != nil {
		response.BindError(c, "invalid query parameters", err)
		return
	}

	filter := car.Filter{
		Brand:        req.Brand,
		Transmission: car.Transmission(req.Transmission),
		IsAvailable:  req.IsAvailable,
		MinSeats:     req.MinSeats,
		Page:         req.Page,
		PageSize:     req.PageSize,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
	}

	cars, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CarResponse, len(cars))
	for i, v := range cars {
		items[i] = NewResponse(v)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), car.CreateRequest{
		PlateNumber:  body.PlateNumber,
		Brand:        body.Brand,
		Model:        body.Model,
		Year:         body.Year,
		Seats:        body.Seats,
		Transmission: car.Transmission(body.Transmission),
		DailyRate:    body.DailyRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(res))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, "invalid request", err)
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(res))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid request", err)
		return
	}

	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	req := car.UpdateRequest{
		PlateNumber: body.PlateNumber,
		Brand:       body.Brand,
		Model:       body.Model,
		Year:        body.Year,
		Seats:       body.Seats,
		DailyRate:   body.DailyRate,
		IsAvailable: body.IsAvailable,
	}
	if body.Transmission != nil {
		t := car.Transmission(*body.Transmission)
		req.Transmission = &t
	}

	res, err := h.service.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(res))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage stores a photo for the car and links it.
func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid request", err)
		return
	}

	if _, err := h.service.GetByID(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, filehttp.CarImageUpload(func(ctx context.Context, fileID string) error {
		return h.service.SetImage(ctx, uri.ID, fileID)
	}))
}
