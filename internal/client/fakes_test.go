package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/service"
	"playfolio/pkg/errors"
)

// fakeAPI implements MessagingAPI and Uploader in memory, with
// switches to force each step to fail.
type fakeAPI struct {
	mu sync.Mutex

	failUpload bool
	failSend   bool

	sent      []*entity.Message
	typing    []bool
	uploaded  []string
	abandoned []string
	seq       int
}

func (a *fakeAPI) SendMessage(ctx context.Context, conversationID string, input SendInput) (*entity.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failSend {
		return nil, errors.Internal("send failed", nil)
	}
	a.seq++
	msg := &entity.Message{
		ID:               uuid.New().String(),
		ConversationID:   conversationID,
		SenderID:         "alice",
		Text:             input.Text,
		ImageObject:      input.ImageObject,
		AttachmentObject: input.AttachmentObject,
		AttachmentName:   input.AttachmentName,
		CreatedAt:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(a.seq) * time.Second),
	}
	a.sent = append(a.sent, msg)
	return msg, nil
}

func (a *fakeAPI) EditMessage(ctx context.Context, conversationID, messageID, text string) (*entity.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, msg := range a.sent {
		if msg.ID == messageID {
			msg.Text = text
			return msg, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (a *fakeAPI) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	return nil
}

func (a *fakeAPI) SetTyping(ctx context.Context, conversationID string, isTyping bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.typing = append(a.typing, isTyping)
	return nil
}

func (a *fakeAPI) CreateUploadTicket(ctx context.Context, contentType string) (*service.UploadTicket, error) {
	return &service.UploadTicket{
		URL:        "https://upload.example/ticket",
		ObjectName: "attachments/" + uuid.New().String(),
		ExpiresAt:  time.Now().Add(15 * time.Minute),
	}, nil
}

func (a *fakeAPI) AbandonUpload(ctx context.Context, objectName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.abandoned = append(a.abandoned, objectName)
	return nil
}

func (a *fakeAPI) UploadFile(ctx context.Context, ticket *service.UploadTicket, filePath, contentType string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failUpload {
		return errors.Internal("upload failed", nil)
	}
	a.uploaded = append(a.uploaded, ticket.ObjectName)
	return nil
}

func (a *fakeAPI) typingSignals() []bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]bool, len(a.typing))
	copy(out, a.typing)
	return out
}
