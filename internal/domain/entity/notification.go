package entity

import "time"

// Notification types routed through the dispatcher. The messaging core
// only emits NotificationMessage; the rest of the platform (follows,
// upvotes) shares the same records and contract.
const (
	NotificationMessage = "message"
	NotificationFollow  = "follow"
	NotificationUpvote  = "upvote"
)

type Notification struct {
	ID          string    `json:"id" firestore:"id"`
	RecipientID string    `json:"recipient_id" firestore:"recipientId"`
	SenderID    string    `json:"sender_id,omitempty" firestore:"senderId,omitempty"`
	Type        string    `json:"type" firestore:"type"`
	RelatedID   string    `json:"related_id,omitempty" firestore:"relatedId,omitempty"`
	Read        bool      `json:"read" firestore:"read"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
