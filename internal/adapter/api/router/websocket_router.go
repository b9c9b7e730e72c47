package router

import (
	"github.com/labstack/echo/v4"

	"playfolio/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up the realtime endpoint.
// No auth middleware here since the handler authenticates the
// token query parameter itself.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
