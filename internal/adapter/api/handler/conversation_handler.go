package handler

import (
	"github.com/labstack/echo/v4"

	"playfolio/internal/usecase"
	"playfolio/pkg/response"
)

type ConversationHandler struct {
	messagingUseCase *usecase.MessagingUseCase
}

func NewConversationHandler(messagingUseCase *usecase.MessagingUseCase) *ConversationHandler {
	return &ConversationHandler{
		messagingUseCase: messagingUseCase,
	}
}

type startConversationRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

type sendMessageRequest struct {
	Text             string `json:"text"`
	ImageObject      string `json:"image_object,omitempty"`
	AttachmentObject string `json:"attachment_object,omitempty"`
	AttachmentName   string `json:"attachment_name,omitempty"`
}

// Empty text is allowed: clearing the caption of an attachment
// message is a valid edit. The usecase rejects edits that would leave
// no content at all.
type editMessageRequest struct {
	Text string `json:"text"`
}

type typingRequest struct {
	IsTyping bool `json:"is_typing"`
}

// StartConversation creates (or returns) the direct conversation with
// the recipient.
func (h *ConversationHandler) StartConversation(c echo.Context) error {
	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	conversation, err := h.messagingUseCase.StartConversation(c.Request().Context(), userID, req.RecipientID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

// ListConversations returns the authenticated user's conversation
// list, most recent first.
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversations, err := h.messagingUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

func (h *ConversationHandler) GetConversation(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	conversation, err := h.messagingUseCase.GetConversation(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

func (h *ConversationHandler) MarkConversationRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	if err := h.messagingUseCase.MarkConversationRead(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "read"})
}

func (h *ConversationHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.messagingUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID:   c.Param("id"),
		Text:             req.Text,
		ImageObject:      req.ImageObject,
		AttachmentObject: req.AttachmentObject,
		AttachmentName:   req.AttachmentName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	conversationID := c.Param("id")

	messages, err := h.messagingUseCase.ListMessages(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ConversationHandler) EditMessage(c echo.Context) error {
	var req editMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.messagingUseCase.EditMessage(c.Request().Context(), userID, c.Param("id"), c.Param("messageId"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, message)
}

func (h *ConversationHandler) DeleteMessage(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.DeleteMessage(c.Request().Context(), userID, c.Param("id"), c.Param("messageId")); err != nil {
		return response.Error(c, err)
	}

	return response.NoContent(c)
}

func (h *ConversationHandler) SetTyping(c echo.Context) error {
	var req typingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.messagingUseCase.SetTyping(c.Request().Context(), userID, c.Param("id"), req.IsTyping); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"is_typing": req.IsTyping})
}
