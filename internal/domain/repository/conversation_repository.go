package repository

import (
	"context"
	"time"

	"playfolio/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	GetByPairKey(ctx context.Context, pairKey string) (*entity.Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error)

	// UpdateSummary persists the denormalized last-message fields.
	// Passing a zero time clears both.
	UpdateSummary(ctx context.Context, id string, lastMessage string, lastMessageAt time.Time) error

	// SetTyping stamps typing[userID] = at. ClearTyping removes the
	// key. Both touch only the caller's own map entry.
	SetTyping(ctx context.Context, id, userID string, at time.Time) error
	ClearTyping(ctx context.Context, id, userID string) error
}
