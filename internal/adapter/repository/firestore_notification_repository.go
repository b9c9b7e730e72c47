package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/repository"
	"playfolio/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	notification.CreatedAt = time.Now()

	_, err := r.client.Collection("notifications").Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return errors.Internal("Failed to create notification", err)
	}

	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	doc, err := r.client.Collection("notifications").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, errors.Internal("Failed to get notification", err)
	}

	var notification entity.Notification
	if err := doc.DataTo(&notification); err != nil {
		return nil, errors.Internal("Failed to parse notification data", err)
	}

	return &notification, nil
}

func (r *firestoreNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*entity.Notification, error) {
	query := r.client.Collection("notifications").
		Where("recipientId", "==", recipientID).
		OrderBy("createdAt", firestore.Desc)
	if unreadOnly {
		query = r.client.Collection("notifications").
			Where("recipientId", "==", recipientID).
			Where("read", "==", false).
			OrderBy("createdAt", firestore.Desc)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching notifications for user %s: %v", recipientID, err)
		return nil, errors.Internal("Failed to fetch notifications", err)
	}

	var notifications []*entity.Notification
	for _, doc := range docs {
		var notification entity.Notification
		if err := doc.DataTo(&notification); err != nil {
			log.Printf("Error parsing notification data for user %s: %v", recipientID, err)
			continue
		}
		notifications = append(notifications, &notification)
	}

	return notifications, nil
}

func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, recipientID, notifType, relatedID string) (int, error) {
	query := r.client.Collection("notifications").
		Where("recipientId", "==", recipientID).
		Where("type", "==", notifType).
		Where("relatedId", "==", relatedID).
		Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread notifications", err)
	}

	return len(docs), nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.client.Collection("notifications").Doc(id).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Notification", err)
		}
		return errors.Internal("Failed to mark notification read", err)
	}

	return nil
}

func (r *firestoreNotificationRepository) MarkReadByRelated(ctx context.Context, recipientID, notifType, relatedID string) error {
	query := r.client.Collection("notifications").
		Where("recipientId", "==", recipientID).
		Where("type", "==", notifType).
		Where("relatedId", "==", relatedID).
		Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to fetch notifications to mark read", err)
	}

	for _, doc := range docs {
		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return errors.Internal("Failed to mark notification read", err)
		}
	}

	return nil
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	query := r.client.Collection("notifications").
		Where("recipientId", "==", recipientID).
		Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to fetch notifications to mark read", err)
	}

	for _, doc := range docs {
		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return errors.Internal("Failed to mark notification read", err)
		}
	}

	return nil
}
