package usecase

import (
	"context"
	"sort"
	"time"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/repository"
	"playfolio/internal/domain/service"
	"playfolio/internal/infrastructure/ratelimit"
	ws "playfolio/internal/infrastructure/websocket"
	"playfolio/pkg/errors"
	"playfolio/pkg/logger"
)

type MessagingUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	notifier         Notifier
	blob             service.BlobService
	wsManager        *ws.Manager
	rateLimiter      *ratelimit.RateLimiter

	typingStaleAfter time.Duration
}

func NewMessagingUseCase(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	blob service.BlobService,
	wsManager *ws.Manager,
	typingStaleAfter time.Duration,
) *MessagingUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &MessagingUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		blob:             blob,
		wsManager:        wsManager,
		rateLimiter:      rateLimiter,
		typingStaleAfter: typingStaleAfter,
	}
}

type SendMessageInput struct {
	ConversationID   string
	Text             string
	ImageObject      string
	AttachmentObject string
	AttachmentName   string
}

type ConversationResponse struct {
	*entity.Conversation
	OtherUser   *entity.PublicProfile `json:"other_user,omitempty"`
	UnreadCount int                   `json:"unread_count"`
	TypingUsers []string              `json:"typing_users,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender        *entity.PublicProfile `json:"sender,omitempty"`
	ImageURL      string                `json:"image_url,omitempty"`
	AttachmentURL string                `json:"attachment_url,omitempty"`
}

// StartConversation returns the existing two-party conversation
// between the pair, or creates one. Idempotent: the canonical pair key
// makes repeat calls land on the same record.
func (uc *MessagingUseCase) StartConversation(ctx context.Context, userID, otherUserID string) (*ConversationResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "start_conversation")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before starting another conversation", waitTime)
	}

	if userID == otherUserID {
		return nil, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	otherUser, err := uc.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, errors.NotFound("Recipient", err)
	}

	pairKey := entity.PairKeyFor(userID, otherUserID)

	conversation, err := uc.conversationRepo.GetByPairKey(ctx, pairKey)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		conversation = &entity.Conversation{
			Participants: []string{userID, otherUserID},
			Typing:       make(map[string]time.Time),
		}
		if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
			return nil, err
		}
	}

	unread, err := uc.notificationRepo.CountUnread(ctx, userID, entity.NotificationMessage, conversation.ID)
	if err != nil {
		logger.Warn("StartConversation: unread count for conversation %s failed: %v", conversation.ID, err)
	}

	return &ConversationResponse{
		Conversation: conversation,
		OtherUser:    otherUser.PublicProfile(),
		UnreadCount:  unread,
	}, nil
}

// ListConversations returns the user's conversations, most recent
// activity first, enriched with the other participant's public
// profile, the unread count, and live typing users.
func (uc *MessagingUseCase) ListConversations(ctx context.Context, userID string) ([]*ConversationResponse, error) {
	conversations, err := uc.conversationRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].Recency().After(conversations[j].Recency())
	})

	now := time.Now()
	responses := make([]*ConversationResponse, 0, len(conversations))

	for _, conversation := range conversations {
		resp := &ConversationResponse{
			Conversation: conversation,
			TypingUsers:  conversation.TypingUsers(userID, now, uc.typingStaleAfter),
		}

		for _, participantID := range conversation.Participants {
			if participantID == userID {
				continue
			}
			otherUser, err := uc.userRepo.GetByID(ctx, participantID)
			if err != nil {
				logger.Warn("ListConversations: participant %s not found for conversation %s: %v", participantID, conversation.ID, err)
				break
			}
			resp.OtherUser = otherUser.PublicProfile()
			break
		}

		unread, err := uc.notificationRepo.CountUnread(ctx, userID, entity.NotificationMessage, conversation.ID)
		if err != nil {
			logger.Warn("ListConversations: unread count for conversation %s failed: %v", conversation.ID, err)
		}
		resp.UnreadCount = unread

		responses = append(responses, resp)
	}

	return responses, nil
}

func (uc *MessagingUseCase) GetConversation(ctx context.Context, userID, conversationID string) (*ConversationResponse, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	resp := &ConversationResponse{
		Conversation: conversation,
		TypingUsers:  conversation.TypingUsers(userID, time.Now(), uc.typingStaleAfter),
	}

	for _, participantID := range conversation.Participants {
		if participantID == userID {
			continue
		}
		if otherUser, err := uc.userRepo.GetByID(ctx, participantID); err == nil {
			resp.OtherUser = otherUser.PublicProfile()
		}
		break
	}

	unread, err := uc.notificationRepo.CountUnread(ctx, userID, entity.NotificationMessage, conversationID)
	if err != nil {
		logger.Warn("GetConversation: unread count for conversation %s failed: %v", conversationID, err)
	}
	resp.UnreadCount = unread

	return resp, nil
}

// SendMessage appends a message and performs the send-time side
// effects: conversation summary update, the sender's typing entry is
// cleared, and one message notification per other participant.
func (uc *MessagingUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	if input.Text == "" && input.ImageObject == "" && input.AttachmentObject == "" {
		return nil, errors.BadRequest("Message requires text or an attachment", nil)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, errors.NotFound("Sender", err)
	}

	message := &entity.Message{
		ConversationID:   input.ConversationID,
		SenderID:         senderID,
		Text:             input.Text,
		ImageObject:      input.ImageObject,
		AttachmentObject: input.AttachmentObject,
		AttachmentName:   input.AttachmentName,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if err := uc.conversationRepo.UpdateSummary(ctx, conversation.ID, message.Summary(), message.CreatedAt); err != nil {
		logger.Error("SendMessage: failed to update summary for conversation %s: %v", conversation.ID, err)
	}

	// Best effort: the trailing stop-typing timer may still fire on
	// the client, but a send always clears the entry server-side.
	if err := uc.conversationRepo.ClearTyping(ctx, conversation.ID, senderID); err != nil {
		logger.Warn("SendMessage: failed to clear typing for %s in conversation %s: %v", senderID, conversation.ID, err)
	}

	for _, participantID := range conversation.Participants {
		if participantID == senderID {
			continue
		}
		err := uc.notifier.Trigger(ctx, TriggerInput{
			RecipientID: participantID,
			SenderID:    senderID,
			Type:        entity.NotificationMessage,
			RelatedID:   conversation.ID,
		})
		if err != nil {
			logger.Error("SendMessage: notification for %s failed: %v", participantID, err)
		}
	}

	resp := &MessageResponse{
		Message: message,
		Sender:  sender.PublicProfile(),
	}
	uc.resolveAttachments(ctx, resp)

	// The sender is included: their optimistic pending entry resolves
	// when the committed record arrives on the subscription.
	if frame := ws.Marshal(ws.EventMessageCreated, resp); frame != nil {
		uc.wsManager.SendToRoom(conversation.ID, frame, "")
	}
	uc.fanOutConversationUpdate(conversation, message.Summary(), message.CreatedAt, senderID)

	return resp, nil
}

// EditMessage replaces the text in place. Author only; attachments,
// timestamps, notifications, and the conversation summary are
// untouched.
func (uc *MessagingUseCase) EditMessage(ctx context.Context, editorID, conversationID, messageID, newText string) (*MessageResponse, error) {
	message, err := uc.messageRepo.GetByID(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != editorID {
		return nil, errors.Forbidden("Only the sender can edit a message", nil)
	}
	if newText == "" && !message.HasAttachment() {
		return nil, errors.BadRequest("Message requires text or an attachment", nil)
	}

	if err := uc.messageRepo.UpdateText(ctx, conversationID, messageID, newText); err != nil {
		return nil, err
	}
	message.Text = newText

	resp := &MessageResponse{Message: message}
	if editor, err := uc.userRepo.GetByID(ctx, editorID); err == nil {
		resp.Sender = editor.PublicProfile()
	}
	uc.resolveAttachments(ctx, resp)

	if frame := ws.Marshal(ws.EventMessageUpdated, resp); frame != nil {
		uc.wsManager.SendToRoom(conversationID, frame, editorID)
	}

	return resp, nil
}

// DeleteMessage removes a message and recomputes the conversation's
// denormalized summary from the newest survivor. A message or
// conversation that is already gone is a no-op.
func (uc *MessagingUseCase) DeleteMessage(ctx context.Context, requesterID, conversationID, messageID string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil
		}
		return err
	}

	message, err := uc.messageRepo.GetByID(ctx, conversationID, messageID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil
		}
		return err
	}
	if message.SenderID != requesterID {
		return errors.Forbidden("Only the sender can delete a message", nil)
	}

	if err := uc.messageRepo.Delete(ctx, conversationID, messageID); err != nil {
		return err
	}

	var summary string
	var summaryAt time.Time
	latest, err := uc.messageRepo.Latest(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return err
		}
	} else {
		summary = latest.Summary()
		summaryAt = latest.CreatedAt
	}

	if err := uc.conversationRepo.UpdateSummary(ctx, conversationID, summary, summaryAt); err != nil {
		logger.Error("DeleteMessage: failed to update summary for conversation %s: %v", conversationID, err)
	}

	deleted := map[string]string{
		"conversation_id": conversationID,
		"message_id":      messageID,
	}
	if frame := ws.Marshal(ws.EventMessageDeleted, deleted); frame != nil {
		uc.wsManager.SendToRoom(conversationID, frame, requesterID)
	}
	uc.fanOutConversationUpdate(conversation, summary, summaryAt, "")

	return nil
}

// ListMessages returns all messages in ascending creation order with
// sender profiles and resolved attachment URLs. A single message whose
// attachment fails to resolve is returned with the URL empty rather
// than failing the batch.
func (uc *MessagingUseCase) ListMessages(ctx context.Context, requesterID, conversationID string) ([]*MessageResponse, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(requesterID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	messages, err := uc.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*entity.PublicProfile)
	responses := make([]*MessageResponse, 0, len(messages))

	for _, message := range messages {
		resp := &MessageResponse{Message: message}

		profile, ok := profiles[message.SenderID]
		if !ok {
			sender, err := uc.userRepo.GetByID(ctx, message.SenderID)
			if err != nil {
				logger.Warn("ListMessages: sender %s not found for message %s: %v", message.SenderID, message.ID, err)
			} else {
				profile = sender.PublicProfile()
			}
			profiles[message.SenderID] = profile
		}
		resp.Sender = profile

		uc.resolveAttachments(ctx, resp)
		responses = append(responses, resp)
	}

	return responses, nil
}

// SetTyping stamps or clears the caller's typing entry and fans the
// signal out to the conversation room. Keystroke-frequency calls are
// expected; excess ones are silently dropped by the rate limiter.
func (uc *MessagingUseCase) SetTyping(ctx context.Context, userID, conversationID string, isTyping bool) error {
	if allowed, _ := uc.rateLimiter.Allow(userID, "typing"); !allowed {
		return nil
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(userID) {
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	now := time.Now()
	if isTyping {
		err = uc.conversationRepo.SetTyping(ctx, conversationID, userID, now)
	} else {
		err = uc.conversationRepo.ClearTyping(ctx, conversationID, userID)
	}
	if err != nil {
		return err
	}

	event := ws.TypingEvent{
		ConversationID: conversationID,
		UserID:         userID,
		IsTyping:       isTyping,
		ExpiresAt:      now.Add(uc.typingStaleAfter).UTC().Format(time.RFC3339),
	}
	if frame := ws.Marshal(ws.EventTyping, event); frame != nil {
		uc.wsManager.SendToRoom(conversationID, frame, userID)
	}

	return nil
}

// MarkConversationRead resets the caller's unread count for the
// conversation by marking its message notifications read.
func (uc *MessagingUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(userID) {
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	if err := uc.notificationRepo.MarkReadByRelated(ctx, userID, entity.NotificationMessage, conversationID); err != nil {
		return err
	}

	receipt := ws.ReadReceiptEvent{
		ConversationID: conversationID,
		ReaderID:       userID,
	}
	if frame := ws.Marshal(ws.EventReadReceipt, receipt); frame != nil {
		uc.wsManager.SendToRoom(conversationID, frame, userID)
	}

	return nil
}

func (uc *MessagingUseCase) resolveAttachments(ctx context.Context, resp *MessageResponse) {
	if uc.blob == nil || !resp.HasAttachment() {
		return
	}

	if resp.ImageObject != "" {
		url, err := uc.blob.SignedReadURL(ctx, resp.ImageObject)
		if err != nil {
			logger.Warn("resolveAttachments: image %s for message %s: %v", resp.ImageObject, resp.Message.ID, err)
		} else {
			resp.ImageURL = url
		}
	}
	if resp.AttachmentObject != "" {
		url, err := uc.blob.SignedReadURL(ctx, resp.AttachmentObject)
		if err != nil {
			logger.Warn("resolveAttachments: attachment %s for message %s: %v", resp.AttachmentObject, resp.Message.ID, err)
		} else {
			resp.AttachmentURL = url
		}
	}
}

// fanOutConversationUpdate pushes the refreshed summary to every
// participant's user channel so conversation lists stay current even
// when the room itself is not open.
func (uc *MessagingUseCase) fanOutConversationUpdate(conversation *entity.Conversation, summary string, at time.Time, excludeUserID string) {
	update := map[string]interface{}{
		"conversation_id": conversation.ID,
		"last_message":    summary,
	}
	if !at.IsZero() {
		update["last_message_at"] = at.UTC().Format(time.RFC3339)
	}

	frame := ws.Marshal(ws.EventConversationUpdated, update)
	if frame == nil {
		return
	}
	for _, participantID := range conversation.Participants {
		if participantID == excludeUserID {
			continue
		}
		uc.wsManager.SendToUser(participantID, frame)
	}
}
