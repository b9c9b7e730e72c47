package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/repository"
	"playfolio/internal/infrastructure/email"
	ws "playfolio/internal/infrastructure/websocket"
	"playfolio/pkg/errors"
	"playfolio/pkg/logger"
)

// TriggerInput is the dispatcher contract: an event of the given type
// happened to RecipientID, caused by SenderID, about RelatedID.
type TriggerInput struct {
	RecipientID string
	SenderID    string
	Type        string
	RelatedID   string
}

// Notifier is what event sources (the messaging core, follows,
// upvotes) depend on.
type Notifier interface {
	Trigger(ctx context.Context, input TriggerInput) error
}

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	wsManager        *ws.Manager
	mailer           email.Mailer

	// Email suppression window per (recipient, sender, type). The
	// notification record is always persisted; only the outbound
	// email is debounced.
	emailDebounce time.Duration
	lastEmail     map[string]time.Time
	emailMutex    sync.Mutex

	clock func() time.Time
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
	mailer email.Mailer,
	emailDebounce time.Duration,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		wsManager:        wsManager,
		mailer:           mailer,
		emailDebounce:    emailDebounce,
		lastEmail:        make(map[string]time.Time),
		clock:            time.Now,
	}
}

// Trigger persists the notification record, pushes it to the
// recipient's live connection, and sends a debounced email. Only the
// record write can fail the call; delivery beyond it is best effort.
func (uc *NotificationUseCase) Trigger(ctx context.Context, input TriggerInput) error {
	if input.RecipientID == "" || input.Type == "" {
		return errors.BadRequest("Notification requires a recipient and a type", nil)
	}

	notification := &entity.Notification{
		RecipientID: input.RecipientID,
		SenderID:    input.SenderID,
		Type:        input.Type,
		RelatedID:   input.RelatedID,
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		logger.Error("Trigger: failed to persist notification for %s: %v", input.RecipientID, err)
		return err
	}

	if frame := ws.Marshal(ws.EventNotification, notification); frame != nil {
		uc.wsManager.SendToUser(input.RecipientID, frame)
	}

	uc.maybeEmail(ctx, notification)

	return nil
}

func (uc *NotificationUseCase) maybeEmail(ctx context.Context, notification *entity.Notification) {
	if uc.mailer == nil {
		return
	}

	key := notification.RecipientID + ":" + notification.SenderID + ":" + notification.Type
	now := uc.clock()

	uc.emailMutex.Lock()
	if sentAt, ok := uc.lastEmail[key]; ok && now.Sub(sentAt) < uc.emailDebounce {
		uc.emailMutex.Unlock()
		return
	}
	uc.lastEmail[key] = now
	uc.emailMutex.Unlock()

	recipient, err := uc.userRepo.GetByID(ctx, notification.RecipientID)
	if err != nil {
		logger.Warn("maybeEmail: recipient %s not found: %v", notification.RecipientID, err)
		return
	}

	senderName := "Someone"
	if notification.SenderID != "" {
		if sender, err := uc.userRepo.GetByID(ctx, notification.SenderID); err == nil {
			senderName = sender.PublicProfile().DisplayName
		}
	}

	var subject, body string
	switch notification.Type {
	case entity.NotificationMessage:
		subject = fmt.Sprintf("%s sent you a message on Playfolio", senderName)
		body = fmt.Sprintf("%s sent you a new message. Open your inbox to reply.", senderName)
	case entity.NotificationFollow:
		subject = fmt.Sprintf("%s followed you on Playfolio", senderName)
		body = fmt.Sprintf("%s is now following your profile.", senderName)
	case entity.NotificationUpvote:
		subject = fmt.Sprintf("%s upvoted your game on Playfolio", senderName)
		body = fmt.Sprintf("%s upvoted one of your listings.", senderName)
	default:
		subject = "New activity on Playfolio"
		body = "You have new activity waiting on Playfolio."
	}

	if err := uc.mailer.Send(ctx, recipient.Email, subject, body); err != nil {
		logger.Warn("maybeEmail: delivery to %s failed: %v", recipient.Email, err)
	}
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	return uc.notificationRepo.ListByRecipient(ctx, userID, unreadOnly)
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientID != userID {
		return errors.Forbidden("Notification belongs to another user", nil)
	}

	return uc.notificationRepo.MarkRead(ctx, notificationID)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) error {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}
