package requests

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the validator-facing request views.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	group := r.Group("/api/requests")
	{
		group.GET("", h.ListByStatus)
		group.GET("/pending", h.ListPending)
		group.GET("/:id", h.Get)
		group.POST("/validate-transition", h.ValidateTransition)
	}
}
