package repository

import (
	"context"

	"playfolio/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	UpdateText(ctx context.Context, conversationID, messageID, text string) error
	Delete(ctx context.Context, conversationID, messageID string) error

	// Latest returns the most recent message in the conversation, or a
	// NOT_FOUND error when none remain.
	Latest(ctx context.Context, conversationID string) (*entity.Message, error)
}
