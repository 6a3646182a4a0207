package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers payment, refund and ledger routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, roleMiddleware, staffMiddleware gin.HandlerFunc) {
	payments := g.Group("/payments", authMiddleware, roleMiddleware)
	{
		payments.POST("", h.RecordPayment)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id/proof", h.UploadProof)
	}

	g.POST("/refunds", authMiddleware, staffMiddleware, h.RecordRefund)

	ledger := g.Group("/bookings", authMiddleware, roleMiddleware)
	{
		ledger.GET("/:id/ledger", h.Ledger)
		ledger.GET("/:id/statement", h.Statement)
	}

	staff := g.Group("/bookings", authMiddleware, staffMiddleware)
	{
		staff.POST("/:id/confirm-payment", h.ConfirmPayment)
		staff.POST("/:id/reject-payment", h.RejectPayment)
	}
}
