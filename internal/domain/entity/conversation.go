package entity

import (
	"sort"
	"strings"
	"time"
)

type Conversation struct {
	ID           string   `json:"id" firestore:"id"`
	Participants []string `json:"participants" firestore:"participants"`

	// PairKey is the canonical sorted-pair identifier for two-party
	// conversations. It makes "start chat" idempotent with a single
	// indexed lookup instead of scanning every conversation.
	PairKey string `json:"-" firestore:"pairKey,omitempty"`

	LastMessage   string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`

	// Typing maps participant ID to the timestamp of their latest
	// "is typing" signal. Each participant only ever writes their own
	// key, so concurrent writers never clobber each other. Entries are
	// removed on send or explicit stop; readers must treat old stamps
	// as stale via TypingUsers.
	Typing map[string]time.Time `json:"typing,omitempty" firestore:"typing,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PairKeyFor builds the canonical key for a two-party conversation.
// Order of the arguments does not matter.
func PairKeyFor(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// TypingUsers returns the participants whose typing stamp is still
// fresh at now, excluding forUser (a user never sees their own
// indicator). Stale entries persist in the map until overwritten or
// cleared; staleness is purely a read-side policy.
func (c *Conversation) TypingUsers(forUser string, now time.Time, staleAfter time.Duration) []string {
	var typing []string
	for userID, stampedAt := range c.Typing {
		if userID == forUser {
			continue
		}
		if now.Sub(stampedAt) <= staleAfter {
			typing = append(typing, userID)
		}
	}
	sort.Strings(typing)
	return typing
}

// Recency is the sort key for a user's conversation list: the last
// message time when one exists, otherwise creation time.
func (c *Conversation) Recency() time.Time {
	if !c.LastMessageAt.IsZero() {
		return c.LastMessageAt
	}
	return c.CreatedAt
}
