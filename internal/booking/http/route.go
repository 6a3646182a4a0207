package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes.
// roleMiddleware resolves the caller's role for every route; staffMiddleware guards back-office actions.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, roleMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	group.Use(authMiddleware, roleMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/group", h.CreateGroup)

		group.PUT("/:id/cancel", h.customerAction(h.service.RequestCancellation))
		group.POST("/:id/withdraw-cancel", h.customerAction(h.service.WithdrawCancellation))
		group.PUT("/:id/extend", h.Extend)
		group.POST("/:id/cancel-extension", h.customerAction(h.service.WithdrawExtension))
	}

	staff := group.Group("", staffMiddleware)
	{
		staff.POST("/:id/confirm", h.staffAction(h.service.Confirm))
		staff.POST("/:id/release", h.staffAction(h.service.Release))
		staff.POST("/:id/return", h.staffAction(h.service.Return))
		staff.POST("/:id/approve-cancel", h.staffAction(h.service.ApproveCancellation))
		staff.POST("/:id/reject-cancel", h.staffAction(h.service.RejectCancellation))
		staff.POST("/:id/approve-extension", h.staffAction(h.service.ApproveExtension))
		staff.POST("/:id/reject-extension", h.staffAction(h.service.RejectExtension))
		staff.PUT("/:id/driver", h.AssignDriver)
	}
}
