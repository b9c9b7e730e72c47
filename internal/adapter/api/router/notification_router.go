package router

import (
	"github.com/labstack/echo/v4"

	"playfolio/internal/adapter/api/handler"
	"playfolio/internal/adapter/api/middleware"
)

func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	notifGroup := e.Group("/v1/notifications")
	notifGroup.Use(authMiddleware.Authenticate)

	notifGroup.GET("", notificationHandler.ListNotifications)  // GET /v1/notifications?unread=true
	notifGroup.PUT("/:id/read", notificationHandler.MarkRead)  // PUT /v1/notifications/:id/read
	notifGroup.PUT("/read-all", notificationHandler.MarkAllRead) // PUT /v1/notifications/read-all
}
