package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefai/backend/internal/middleware"
	"github.com/pageza/chefai/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "ChefAI API is running",
		"version": "v1.0.0",
	})
}

// Services are the collaborators the handlers need.
type Services struct {
	Auth      service.IAuthService
	Pantry    service.IPantryService
	Settings  service.ISettingsService
	Favorites service.IFavoriteService
	Chat      ChatService
	// ChatLimit runs before /chat when set.
	ChatLimit gin.HandlerFunc
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, svc Services) {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	v1 := router.Group("/api/v1")
	auth := middleware.AuthMiddleware(svc.Auth)

	NewUserHandler(svc.Auth).RegisterRoutes(v1, auth)

	protected := v1.Group("")
	protected.Use(auth)
	NewPantryHandler(svc.Pantry).RegisterRoutes(protected)
	NewSettingsHandler(svc.Settings).RegisterRoutes(protected)
	NewFavoriteHandler(svc.Favorites).RegisterRoutes(protected)
	NewChatHandler(svc.Chat, svc.ChatLimit).RegisterRoutes(protected)
}
