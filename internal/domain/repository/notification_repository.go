package repository

import (
	"context"

	"playfolio/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*entity.Notification, error)

	// CountUnread counts unread notifications of the given type whose
	// relatedId matches. Per-conversation unread badges are computed
	// from this with type "message" and the conversation ID.
	CountUnread(ctx context.Context, recipientID, notifType, relatedID string) (int, error)

	MarkRead(ctx context.Context, id string) error
	MarkReadByRelated(ctx context.Context, recipientID, notifType, relatedID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}
