package http

import "github.com/gin-gonic/gin"

// RegisterRoutes exposes stored car photos and payment proofs to signed-in users.
func RegisterRoutes(r gin.IRouter, handler *Handler, authMiddleware gin.HandlerFunc) {
	group := r.Group("/files", authMiddleware)
	{
		group.GET("/:id", handler.ServeFile)
		group.GET("/:id/info", handler.Info)
		group.GET("/:id/thumbnail", handler.ServeThumbnail)
	}
}
