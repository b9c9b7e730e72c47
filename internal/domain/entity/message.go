package entity

import "time"

type Message struct {
	ID             string `json:"id" firestore:"id"`
	ConversationID string `json:"conversation_id" firestore:"conversationId"`
	SenderID       string `json:"sender_id" firestore:"senderId"`
	Text           string `json:"text,omitempty" firestore:"text,omitempty"`

	// Attachment references are opaque storage object names; they are
	// resolved to fetchable URLs when a listing is served. Attachments
	// are immutable once sent, edits touch text only.
	ImageObject      string `json:"image_object,omitempty" firestore:"imageObject,omitempty"`
	AttachmentObject string `json:"attachment_object,omitempty" firestore:"attachmentObject,omitempty"`
	AttachmentName   string `json:"attachment_name,omitempty" firestore:"attachmentName,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func (m *Message) HasAttachment() bool {
	return m.ImageObject != "" || m.AttachmentObject != ""
}

// Summary is the denormalized text stored on the conversation for list
// rendering. Attachment-only messages get a synthetic description.
func (m *Message) Summary() string {
	if m.Text != "" {
		return m.Text
	}
	if m.ImageObject != "" {
		return "Sent an image"
	}
	if m.AttachmentObject != "" {
		if m.AttachmentName != "" {
			return "Sent: " + m.AttachmentName
		}
		return "Sent an attachment"
	}
	return ""
}
