package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carrent/rental-backend/internal/passwordreset"
	"github.com/carrent/rental-backend/internal/pkg/response"
)

type Handler struct {
	service passwordreset.Service
}

func NewHandler(service passwordreset.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, "invalid request", err)
		return
	}

	res, err := h.service.IssueCode(c.Request.Context(), req.Identifier, req.Method)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ForgotPasswordResponse{
		Message:   "if the account exists, a verification code has been sent",
		ExpiresAt: res.ExpiresAt,
		Code:      res.Code,
	})
}

func (h *Handler) VerifyResetCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, "invalid request", err)
		return
	}

	res, err := h.service.VerifyCode(c.Request.Context(), req.Identifier, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyCodeResponse{ResetToken: res.ResetToken, ExpiresAt: res.ExpiresAt})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, "invalid request", err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword, req.ConfirmPassword); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password has been reset"})
}
