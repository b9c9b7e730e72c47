package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageSummary(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		want    string
	}{
		{
			name:    "text wins over attachments",
			message: Message{Text: "hello", ImageObject: "images/a.png"},
			want:    "hello",
		},
		{
			name:    "image only",
			message: Message{ImageObject: "images/a.png"},
			want:    "Sent an image",
		},
		{
			name:    "named attachment",
			message: Message{AttachmentObject: "attachments/a.pdf", AttachmentName: "pitch.pdf"},
			want:    "Sent: pitch.pdf",
		},
		{
			name:    "unnamed attachment",
			message: Message{AttachmentObject: "attachments/a.pdf"},
			want:    "Sent an attachment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.message.Summary())
		})
	}
}

func TestHasAttachment(t *testing.T) {
	assert.False(t, (&Message{Text: "hi"}).HasAttachment())
	assert.True(t, (&Message{ImageObject: "images/a.png"}).HasAttachment())
	assert.True(t, (&Message{AttachmentObject: "attachments/a.pdf"}).HasAttachment())
}
