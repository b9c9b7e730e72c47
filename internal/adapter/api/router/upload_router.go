package router

import (
	"github.com/labstack/echo/v4"

	"playfolio/internal/adapter/api/handler"
	"playfolio/internal/adapter/api/middleware"
)

func SetupUploadRouter(e *echo.Echo, uploadHandler *handler.UploadHandler, authMiddleware *middleware.AuthMiddleware) {
	uploadGroup := e.Group("/v1/uploads")
	uploadGroup.Use(authMiddleware.Authenticate)

	uploadGroup.POST("", uploadHandler.CreateUploadTicket) // POST /v1/uploads - Signed upload URL for attachments
	uploadGroup.DELETE("", uploadHandler.AbandonUpload)    // DELETE /v1/uploads?object=... - Drop an unreferenced upload
}
