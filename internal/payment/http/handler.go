package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carrent/rental-backend/internal/auth"
	"github.com/carrent/rental-backend/internal/booking"
	filehttp "github.com/carrent/rental-backend/internal/file/http"
	"github.com/carrent/rental-backend/internal/payment"
	"github.com/carrent/rental-backend/internal/pkg/request"
	"github.com/carrent/rental-backend/internal/pkg/response"
	"github.com/carrent/rental-backend/internal/user"
)

type Handler struct {
	service     payment.Service
	fileHandler *filehttp.Handler
}

func NewHandler(service payment.Service, fileHandler *filehttp.Handler) *Handler {
	return &Handler{
		service:     service,
		fileHandler: fileHandler,
	}
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{
		UserID:     auth.GetUserID(c),
		BackOffice: user.Role(auth.GetUserRole(c)).IsBackOffice(),
	}
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var body RecordPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	p, summary, err := h.service.RecordPayment(c.Request.Context(), payment.RecordPaymentRequest{
		BookingID:   body.BookingID,
		CustomerID:  body.CustomerID,
		Amount:      body.Amount,
		Method:      body.PaymentMethod,
		ReferenceNo: body.ReferenceNo,
		GCashNo:     body.GCashNo,
		Description: body.Description,
		PaidAt:      body.PaidAt,
	}, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, RecordPaymentResponse{
		Payment: NewPaymentResponse(p),
		Ledger:  NewLedgerResponse(summary),
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid payment ID", err)
		return
	}

	p, err := h.service.GetPayment(c.Request.Context(), uri.ID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPaymentResponse(p))
}

// UploadProof stores a receipt or screenshot for the payment.
func (h *Handler) UploadProof(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid payment ID", err)
		return
	}

	actor := actorFrom(c)
	// Check access before accepting the upload.
	if _, err := h.service.GetPayment(c.Request.Context(), uri.ID, actor); err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, filehttp.PaymentProofUpload(func(ctx context.Context, fileID string) error {
		return h.service.AttachProof(ctx, uri.ID, actor, fileID)
	}))
}

func (h *Handler) RecordRefund(c *gin.Context) {
	var body RecordRefundBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, "invalid request body", err)
		return
	}

	rf, summary, err := h.service.RecordRefund(c.Request.Context(), payment.RecordRefundRequest{
		BookingID:   body.BookingID,
		Amount:      body.Amount,
		Method:      body.RefundMethod,
		Kind:        body.Type,
		Description: body.Description,
		RefundedAt:  body.RefundDate,
	}, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, RecordRefundResponse{
		Refund: NewRefundResponse(rf),
		Ledger: NewLedgerResponse(summary),
	})
}

func (h *Handler) Ledger(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid booking ID", err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), uri.ID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewLedgerResponse(summary))
}

func (h *Handler) Statement(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid booking ID", err)
		return
	}

	pdf, err := h.service.Statement(c.Request.Context(), uri.ID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="statement-`+uri.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	h.settle(c, h.service.ConfirmPayment)
}

func (h *Handler) RejectPayment(c *gin.Context) {
	h.settle(c, h.service.RejectPayment)
}

func (h *Handler) settle(c *gin.Context, fn func(ctx context.Context, bookingID string) (payment.Summary, error)) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, "invalid booking ID", err)
		return
	}

	summary, err := fn(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewLedgerResponse(summary))
}
