package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"playfolio/internal/domain/entity"
	"playfolio/internal/domain/service"
	"playfolio/pkg/errors"
	"playfolio/pkg/logger"
)

// Uploader performs the binary PUT of the two-phase upload.
type Uploader interface {
	UploadFile(ctx context.Context, ticket *service.UploadTicket, filePath, contentType string) error
}

// Draft is the staged input of the message box: text plus at most one
// local file waiting to be uploaded.
type Draft struct {
	Text           string
	AttachmentPath string
	AttachmentType string
	AttachmentName string
}

func (d Draft) empty() bool {
	return strings.TrimSpace(d.Text) == "" && d.AttachmentPath == ""
}

// Composer owns the optimistic send pipeline for one conversation.
// Submit clears the input immediately and stages a pending entry; a
// failed upload or send removes the entry and puts the draft back
// exactly as it was.
type Composer struct {
	api            MessagingAPI
	uploader       Uploader
	conversationID string

	mu      sync.Mutex
	draft   Draft
	pending []*PendingEntry

	clock func() time.Time
	newID func() string
}

func NewComposer(api MessagingAPI, uploader Uploader, conversationID string) *Composer {
	return &Composer{
		api:            api,
		uploader:       uploader,
		conversationID: conversationID,
		clock:          time.Now,
		newID:          func() string { return uuid.New().String() },
	}
}

// SetDraft replaces the staged input, mirroring what the user typed.
func (c *Composer) SetDraft(draft Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
}

func (c *Composer) CurrentDraft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Pending returns the optimistic entries still awaiting their
// committed counterparts.
func (c *Composer) Pending() []*PendingEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*PendingEntry, len(c.pending))
	copy(out, c.pending)
	return out
}

// Entries merges the server's committed messages with the local
// pending entries into the timeline to render.
func (c *Composer) Entries(committed []*entity.Message) []Entry {
	return Merge(committed, c.Pending())
}

// Submit sends the staged draft. The input clears and a pending entry
// appears before any network call; on failure both are undone and the
// caller sees the original draft again, with no orphan blob left in
// storage.
func (c *Composer) Submit(ctx context.Context) (*entity.Message, error) {
	c.mu.Lock()
	staged := c.draft
	if staged.empty() {
		c.mu.Unlock()
		return nil, errors.BadRequest("Nothing to send", nil)
	}
	c.draft = Draft{}

	entry := &PendingEntry{
		TempID:         c.newID(),
		Text:           staged.Text,
		AttachmentName: staged.AttachmentName,
		StagedAt:       c.clock(),
	}
	c.pending = append(c.pending, entry)
	c.mu.Unlock()

	input := SendInput{Text: staged.Text}

	if staged.AttachmentPath != "" {
		objectName, err := c.uploadAttachment(ctx, staged)
		if err != nil {
			c.rollback(entry, staged)
			return nil, err
		}
		if strings.HasPrefix(staged.AttachmentType, "image/") {
			input.ImageObject = objectName
			entry.ImageObject = objectName
		} else {
			input.AttachmentObject = objectName
			input.AttachmentName = staged.AttachmentName
			entry.AttachmentObject = objectName
		}
	}

	msg, err := c.api.SendMessage(ctx, c.conversationID, input)
	if err != nil {
		c.rollback(entry, staged)
		c.abandonUploads(ctx, entry)
		return nil, err
	}

	c.mu.Lock()
	entry.CommittedID = msg.ID
	c.mu.Unlock()
	return msg, nil
}

// Edit replaces a message's text. The caller clears its edit box up
// front and restores the prior text if the call fails. Empty text is
// passed through: it clears the caption of an attachment message, and
// the server rejects it when the message has no attachment.
func (c *Composer) Edit(ctx context.Context, messageID, newText string) (*entity.Message, error) {
	return c.api.EditMessage(ctx, c.conversationID, messageID, newText)
}

func (c *Composer) Delete(ctx context.Context, messageID string) error {
	return c.api.DeleteMessage(ctx, c.conversationID, messageID)
}

// Resolve drops the pending entry whose committed message has arrived
// on the subscription.
func (c *Composer) Resolve(committedID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, entry := range c.pending {
		if entry.CommittedID == committedID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *Composer) uploadAttachment(ctx context.Context, staged Draft) (string, error) {
	ticket, err := c.api.CreateUploadTicket(ctx, staged.AttachmentType)
	if err != nil {
		return "", err
	}
	if err := c.uploader.UploadFile(ctx, ticket, staged.AttachmentPath, staged.AttachmentType); err != nil {
		return "", err
	}
	return ticket.ObjectName, nil
}

func (c *Composer) rollback(entry *PendingEntry, staged Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p == entry {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.draft = staged
}

func (c *Composer) abandonUploads(ctx context.Context, entry *PendingEntry) {
	for _, object := range []string{entry.ImageObject, entry.AttachmentObject} {
		if object == "" {
			continue
		}
		if err := c.api.AbandonUpload(ctx, object); err != nil {
			logger.Warn("composer: failed to abandon upload %s: %v", object, err)
		}
	}
}
