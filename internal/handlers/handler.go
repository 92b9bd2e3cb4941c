package handlers

import (
	"balance_checker/internal/logger"
	"balance_checker/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
// Unregistered paths fall through to gin's 404, which is what external
// probers expect from the health surface.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Liveness endpoint for the supervising process manager.
	router.GET("/health", h.health)

	api := router.Group("/api/v1")
	{
		api.GET("/status", h.getStatus)
		api.GET("/events", h.getEvents)
	}

	// Status streaming over WebSocket (HTTP upgrade), same port
	router.GET("/ws", h.wsConnect)

	return router
}
