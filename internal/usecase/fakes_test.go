package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/service"
	"playfolio/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	r.users[user.ID] = user
	return nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*entity.Conversation)}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if len(conversation.Participants) == 2 {
		conversation.PairKey = entity.PairKeyFor(conversation.Participants[0], conversation.Participants[1])
	}
	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	r.conversations[conversation.ID] = conversation
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conversation, nil
}

func (r *fakeConversationRepo) GetByPairKey(ctx context.Context, pairKey string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conversation := range r.conversations {
		if conversation.PairKey == pairKey {
			return conversation, nil
		}
	}
	return nil, errors.NotFound("Conversation", nil)
}

func (r *fakeConversationRepo) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			out = append(out, conversation)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) UpdateSummary(ctx context.Context, id string, lastMessage string, lastMessageAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conversation.LastMessage = lastMessage
	conversation.LastMessageAt = lastMessageAt
	conversation.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConversationRepo) SetTyping(ctx context.Context, id, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if conversation.Typing == nil {
		conversation.Typing = make(map[string]time.Time)
	}
	conversation.Typing[userID] = at
	return nil
}

func (r *fakeConversationRepo) ClearTyping(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	delete(conversation.Typing, userID)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]*entity.Message
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string][]*entity.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	// Monotonic timestamps so ordering assertions are deterministic.
	r.seq++
	message.CreatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], message)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages[conversationID] {
		if message.ID == messageID {
			return message, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Message, len(r.messages[conversationID]))
	copy(out, r.messages[conversationID])
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) UpdateText(ctx context.Context, conversationID, messageID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages[conversationID] {
		if message.ID == messageID {
			message.Text = text
			return nil
		}
	}
	return errors.NotFound("Message", nil)
}

func (r *fakeMessageRepo) Delete(ctx context.Context, conversationID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.messages[conversationID]
	for i, message := range list {
		if message.ID == messageID {
			r.messages[conversationID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("Message", nil)
}

func (r *fakeMessageRepo) Latest(ctx context.Context, conversationID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.messages[conversationID]
	if len(list) == 0 {
		return nil, errors.NotFound("Message", nil)
	}
	latest := list[0]
	for _, message := range list[1:] {
		if message.CreatedAt.After(latest.CreatedAt) {
			latest = message
		}
	}
	return latest, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.ID == id {
			return notification, nil
		}
	}
	return nil, errors.NotFound("Notification", nil)
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, notification := range r.notifications {
		if notification.RecipientID != recipientID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		out = append(out, notification)
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID, notifType, relatedID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID &&
			notification.Type == notifType &&
			notification.RelatedID == relatedID &&
			!notification.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.ID == id {
			notification.Read = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (r *fakeNotificationRepo) MarkReadByRelated(ctx context.Context, recipientID, notifType, relatedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID &&
			notification.Type == notifType &&
			notification.RelatedID == relatedID {
			notification.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.RecipientID == recipientID {
			notification.Read = true
		}
	}
	return nil
}

// recordingNotifier captures trigger calls and persists records the
// way the real dispatcher does, so unread counts behave.
type recordingNotifier struct {
	repo  *fakeNotificationRepo
	calls []TriggerInput
}

func (n *recordingNotifier) Trigger(ctx context.Context, input TriggerInput) error {
	n.calls = append(n.calls, input)
	return n.repo.Create(ctx, &entity.Notification{
		RecipientID: input.RecipientID,
		SenderID:    input.SenderID,
		Type:        input.Type,
		RelatedID:   input.RelatedID,
	})
}

type fakeBlob struct {
	deleted []string
}

func (b *fakeBlob) GenerateUploadTicket(ctx context.Context, contentType, folder string) (*service.UploadTicket, error) {
	return &service.UploadTicket{
		URL:        "https://upload.example/" + folder,
		ObjectName: folder + "/" + uuid.New().String(),
		ExpiresAt:  time.Now().Add(15 * time.Minute),
	}, nil
}

func (b *fakeBlob) SignedReadURL(ctx context.Context, object string) (string, error) {
	return "https://signed.example/" + object, nil
}

func (b *fakeBlob) Delete(ctx context.Context, object string) error {
	b.deleted = append(b.deleted, object)
	return nil
}

type sentEmail struct {
	to      string
	subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (m *fakeMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{to: toEmail, subject: subject})
	return nil
}
