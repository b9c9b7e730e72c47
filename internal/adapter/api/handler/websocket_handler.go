package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"playfolio/internal/adapter/api/middleware"
	ws "playfolio/internal/infrastructure/websocket"
	"playfolio/internal/usecase"
	"playfolio/pkg/errors"
	"playfolio/pkg/logger"
)

type WebSocketHandler struct {
	wsManager        *ws.Manager
	authMiddleware   *middleware.AuthMiddleware
	messagingUseCase *usecase.MessagingUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, messagingUseCase *usecase.MessagingUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:        wsManager,
		authMiddleware:   authMiddleware,
		messagingUseCase: messagingUseCase,
	}
}

// HandleWebSocket upgrades the connection and runs the client pumps.
// The token arrives as a query parameter because browsers cannot set
// headers on WebSocket upgrades.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(userID, conn)
	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager, h.handleCommand)
	go client.WritePump()

	return nil
}

// handleCommand dispatches one inbound frame. Subscribing to a
// conversation is the reactive-query attach; unsubscribing is the
// teardown.
func (h *WebSocketHandler) handleCommand(client *ws.Client, payload []byte) {
	var frame ws.Envelope
	if err := json.Unmarshal(payload, &frame); err != nil {
		logger.Warn("websocket: malformed frame from %s: %v", client.UserID, err)
		h.sendError(client, "Invalid message format")
		return
	}

	ctx := context.Background()

	switch frame.Type {
	case ws.CommandPing:
		if pong := ws.Marshal(ws.EventPong, map[string]string{"status": "alive"}); pong != nil {
			h.wsManager.SendToUser(client.UserID, pong)
		}

	case ws.CommandSubscribe:
		if frame.ConversationID == "" {
			h.sendError(client, "Missing conversation_id")
			return
		}
		// Only participants may attach to a conversation's stream.
		if _, err := h.messagingUseCase.GetConversation(ctx, client.UserID, frame.ConversationID); err != nil {
			h.sendError(client, "Cannot subscribe to this conversation")
			return
		}
		h.wsManager.JoinRoom(frame.ConversationID, client)

	case ws.CommandUnsubscribe:
		if frame.ConversationID == "" {
			h.sendError(client, "Missing conversation_id")
			return
		}
		h.wsManager.LeaveRoom(frame.ConversationID, client)

	case ws.CommandTypingStart, ws.CommandTypingStop:
		if frame.ConversationID == "" {
			h.sendError(client, "Missing conversation_id")
			return
		}
		isTyping := frame.Type == ws.CommandTypingStart
		if err := h.messagingUseCase.SetTyping(ctx, client.UserID, frame.ConversationID, isTyping); err != nil {
			logger.Warn("websocket: typing signal from %s failed: %v", client.UserID, err)
		}

	case ws.CommandMarkRead:
		if frame.ConversationID == "" {
			h.sendError(client, "Missing conversation_id")
			return
		}
		if err := h.messagingUseCase.MarkConversationRead(ctx, client.UserID, frame.ConversationID); err != nil {
			logger.Warn("websocket: mark read from %s failed: %v", client.UserID, err)
		}

	default:
		logger.Warn("websocket: unknown command %q from %s", frame.Type, client.UserID)
		h.sendError(client, "Unknown message type")
	}
}

func (h *WebSocketHandler) sendError(client *ws.Client, message string) {
	if frame := ws.Marshal(ws.EventError, map[string]string{"error": message}); frame != nil {
		h.wsManager.SendToUser(client.UserID, frame)
	}
}
