package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the public password reset routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/auth")
	{
		group.POST("/forgot-password", h.ForgotPassword)
		group.POST("/verify-reset-code", h.VerifyResetCode)
		group.POST("/reset-password", h.ResetPassword)
	}
}
