package router

import (
	"github.com/labstack/echo/v4"

	"playfolio/internal/adapter/api/handler"
	"playfolio/internal/adapter/api/middleware"
)

// SetupConversationRouter wires all conversation and message routes.
func SetupConversationRouter(e *echo.Echo, conversationHandler *handler.ConversationHandler, authMiddleware *middleware.AuthMiddleware) {
	convGroup := e.Group("/v1/conversations")
	convGroup.Use(authMiddleware.Authenticate)

	// Conversation management
	convGroup.POST("", conversationHandler.StartConversation)       // POST /v1/conversations - Get or create direct conversation
	convGroup.GET("", conversationHandler.ListConversations)        // GET /v1/conversations - List user's conversations
	convGroup.GET("/:id", conversationHandler.GetConversation)      // GET /v1/conversations/:id - Get specific conversation
	convGroup.PUT("/:id/read", conversationHandler.MarkConversationRead) // PUT /v1/conversations/:id/read - Clear unread state
	convGroup.PUT("/:id/typing", conversationHandler.SetTyping)     // PUT /v1/conversations/:id/typing - Typing heartbeat

	// Message management
	convGroup.POST("/:id/messages", conversationHandler.SendMessage)                 // POST /v1/conversations/:id/messages
	convGroup.GET("/:id/messages", conversationHandler.ListMessages)                 // GET /v1/conversations/:id/messages
	convGroup.PUT("/:id/messages/:messageId", conversationHandler.EditMessage)       // PUT /v1/conversations/:id/messages/:messageId
	convGroup.DELETE("/:id/messages/:messageId", conversationHandler.DeleteMessage)  // DELETE /v1/conversations/:id/messages/:messageId
}
