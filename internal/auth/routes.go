package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the one-time-code endpoints.
func RegisterRoutes(r *gin.Engine, handler *Handler) {
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/otp", handler.PutCode)
		authGroup.POST("/otp/verify", handler.VerifyCode)
		authGroup.GET("/otp/:identifier", handler.PeekCode)
	}
}
