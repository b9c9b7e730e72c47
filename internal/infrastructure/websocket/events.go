package websocket

import (
	"encoding/json"
	"time"
)

// Server-pushed event types.
const (
	EventMessageCreated      = "message.created"
	EventMessageUpdated      = "message.updated"
	EventMessageDeleted      = "message.deleted"
	EventConversationUpdated = "conversation.updated"
	EventTyping              = "typing"
	EventNotification        = "notification"
	EventReadReceipt         = "read.receipt"
	EventError               = "error"
	EventPong                = "pong"
)

// Client-sent command types.
const (
	CommandSubscribe   = "subscribe"
	CommandUnsubscribe = "unsubscribe"
	CommandTypingStart = "typing_start"
	CommandTypingStop  = "typing_stop"
	CommandMarkRead    = "mark_read"
	CommandPing        = "ping"
)

// Envelope is the frame shared by commands and events.
type Envelope struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
}

type TypingEvent struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	IsTyping       bool   `json:"is_typing"`
	ExpiresAt      string `json:"expires_at"`
}

type ReadReceiptEvent struct {
	ConversationID string `json:"conversation_id"`
	ReaderID       string `json:"reader_id"`
}

// Marshal wraps payload in an Envelope and serializes it. A payload
// that cannot marshal is a programming error; callers get nil and
// should skip the send.
func Marshal(eventType string, payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	frame, err := json.Marshal(Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil
	}

	return frame
}
