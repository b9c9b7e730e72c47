package router

import (
	"github.com/labstack/echo/v4"

	"playfolio/internal/adapter/api/handler"
	"playfolio/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	conversationHandler *handler.ConversationHandler,
	notificationHandler *handler.NotificationHandler,
	uploadHandler *handler.UploadHandler,
	wsHandler *handler.WebSocketHandler,
) {
	SetupConversationRouter(e, conversationHandler, authMiddleware)
	SetupNotificationRouter(e, notificationHandler, authMiddleware)
	SetupUploadRouter(e, uploadHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupHealthRouter(e)
}
