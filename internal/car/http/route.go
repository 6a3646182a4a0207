package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers car routes. Anyone signed in may browse, staff manage the fleet.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/cars")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}

	staff := group.Group("", staffMiddleware)
	{
		staff.POST("", h.Create)
		staff.PATCH("/:id", h.Update)
		staff.DELETE("/:id", h.Delete)
		staff.POST("/:id/image", h.UploadImage)
	}
}
