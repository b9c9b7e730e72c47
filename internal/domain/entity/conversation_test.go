package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyForIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, PairKeyFor("alice", "bob"), PairKeyFor("bob", "alice"))
	assert.Equal(t, "alice:bob", PairKeyFor("bob", "alice"))
}

func TestHasParticipant(t *testing.T) {
	conversation := &Conversation{Participants: []string{"alice", "bob"}}

	assert.True(t, conversation.HasParticipant("alice"))
	assert.True(t, conversation.HasParticipant("bob"))
	assert.False(t, conversation.HasParticipant("mallory"))
}

func TestTypingUsersFiltersStaleEntries(t *testing.T) {
	now := time.Now()
	conversation := &Conversation{
		Participants: []string{"alice", "bob", "carol"},
		Typing: map[string]time.Time{
			"bob":   now.Add(-1 * time.Second),
			"carol": now.Add(-10 * time.Second),
		},
	}

	typing := conversation.TypingUsers("alice", now, 4*time.Second)

	assert.Equal(t, []string{"bob"}, typing)
}

func TestTypingUsersExcludesSelf(t *testing.T) {
	now := time.Now()
	conversation := &Conversation{
		Participants: []string{"alice", "bob"},
		Typing: map[string]time.Time{
			"alice": now,
			"bob":   now,
		},
	}

	assert.Equal(t, []string{"bob"}, conversation.TypingUsers("alice", now, 4*time.Second))
	assert.Equal(t, []string{"alice"}, conversation.TypingUsers("bob", now, 4*time.Second))
}

func TestRecencyPrefersLastMessageTime(t *testing.T) {
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lastMessage := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	conversation := &Conversation{CreatedAt: created}
	assert.Equal(t, created, conversation.Recency())

	conversation.LastMessageAt = lastMessage
	assert.Equal(t, lastMessage, conversation.Recency())
}
