package blockchain

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the blockchain mirror endpoints.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	group := r.Group("/api/blockchain")
	{
		group.GET("/trees", h.GetTrees)
		group.GET("/requests", h.GetRequests)
		group.GET("/listings", h.GetListings)
		group.GET("/listings/stats", h.GetListingStats)
		group.GET("/pending/:address", h.GetPendingCredits)
		group.GET("/status", h.GetStatus)
		group.POST("/refresh", h.Refresh)
	}
}
